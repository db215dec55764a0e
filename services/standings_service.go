package services

import (
	"context"
	"sort"

	"nerdfootball/logging"
	"nerdfootball/models"
)

// StandingsCache is the projection cache read through by StandingsService
type StandingsCache interface {
	Get(key string) (interface{}, bool)
	Generation(key string) uint64
	SetIfCurrent(key string, value interface{}, generation uint64) bool
	CacheInvalidator
}

// StandingsService serves the read side: leaderboards, week scores and the
// survivor board, each cached until the next recompute invalidates it.
type StandingsService struct {
	scores   WeeklyScoreStore
	survivor SurvivorStatusStore
	cache    StandingsCache
	logger   *logging.Logger
}

// NewStandingsService creates the read-side service
func NewStandingsService(scores WeeklyScoreStore, survivor SurvivorStatusStore, cache StandingsCache) *StandingsService {
	return &StandingsService{
		scores:   scores,
		survivor: survivor,
		cache:    cache,
		logger:   logging.WithPrefix("StandingsService"),
	}
}

// SeasonStandings returns the ranked leaderboard. A cache miss regenerates
// it from the stored weekly records rather than the standings projection.
func (s *StandingsService) SeasonStandings(ctx context.Context, season int) ([]models.SeasonStanding, error) {
	if err := ValidateSeason(season); err != nil {
		return nil, err
	}

	key := StandingsKey(season)
	if cached, ok := s.cache.Get(key); ok {
		if standings, ok := cached.([]models.SeasonStanding); ok {
			return standings, nil
		}
	}

	generation := s.cache.Generation(key)
	records, err := s.scores.GetSeasonWeeklyScores(ctx, season)
	if err != nil {
		return nil, storeError("get_season_weekly_scores", err)
	}
	standings := AggregateSeason(GroupRecordsByUser(records))
	for i := range standings {
		standings[i].Season = season
	}

	if !s.cache.SetIfCurrent(key, standings, generation) {
		s.logger.Debugf("Season %d standings changed during regeneration, not cached", season)
	}
	s.logger.Debugf("Regenerated season %d standings from %d weekly records", season, len(records))
	return standings, nil
}

// WeekScores returns every user's record for a week ordered by points
func (s *StandingsService) WeekScores(ctx context.Context, season, week int) ([]models.WeeklyScoreRecord, error) {
	if err := ValidateSeason(season); err != nil {
		return nil, err
	}
	if week < 1 {
		return nil, ErrInvalidWeek
	}

	key := WeekScoresKey(season, week)
	if cached, ok := s.cache.Get(key); ok {
		if records, ok := cached.([]models.WeeklyScoreRecord); ok {
			return records, nil
		}
	}

	generation := s.cache.Generation(key)
	records, err := s.scores.GetWeekScores(ctx, season, week)
	if err != nil {
		return nil, storeError("get_week_scores", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TotalPoints != records[j].TotalPoints {
			return records[i].TotalPoints > records[j].TotalPoints
		}
		return records[i].UserID < records[j].UserID
	})

	s.cache.SetIfCurrent(key, records, generation)
	return records, nil
}

// SurvivorBoard returns every entry of the season, alive entries first
func (s *StandingsService) SurvivorBoard(ctx context.Context, season int) ([]models.SurvivorEntry, error) {
	if err := ValidateSeason(season); err != nil {
		return nil, err
	}

	key := SurvivorKey(season)
	if cached, ok := s.cache.Get(key); ok {
		if entries, ok := cached.([]models.SurvivorEntry); ok {
			return entries, nil
		}
	}

	generation := s.cache.Generation(key)
	entries, err := s.survivor.GetSeasonSurvivorStatuses(ctx, season)
	if err != nil {
		return nil, storeError("get_survivor_statuses", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsEliminated() != b.IsEliminated() {
			return !a.IsEliminated()
		}
		if a.IsEliminated() && a.EliminatedWeek != b.EliminatedWeek {
			return a.EliminatedWeek > b.EliminatedWeek
		}
		return a.UserID < b.UserID
	})

	s.cache.SetIfCurrent(key, entries, generation)
	return entries, nil
}
