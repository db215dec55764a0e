package services

import (
	"context"
	"fmt"
	"sort"

	"nerdfootball/logging"
	"nerdfootball/models"
)

// LegacySource is the read side of the original hosted store
type LegacySource interface {
	GameReader
	ConfidencePickReader
	SurvivorPickReader
}

// GameWriter stores normalized games
type GameWriter interface {
	UpsertGames(ctx context.Context, games []models.Game) error
}

// ConfidencePickWriter stores one user's week of confidence picks
type ConfidencePickWriter interface {
	PutWeekPicks(ctx context.Context, userID string, season, week int, picks map[string]models.Pick) error
}

// SurvivorPickWriter stores one survivor pick
type SurvivorPickWriter interface {
	PutSurvivorPick(ctx context.Context, userID string, season int, pick models.SurvivorPick) error
}

// ImportSummary counts what a legacy import copied
type ImportSummary struct {
	Season        int   `json:"season"`
	Weeks         []int `json:"weeks"`
	Games         int   `json:"games"`
	PickUsers     int   `json:"pickUsers"`
	Picks         int   `json:"picks"`
	SurvivorUsers int   `json:"survivorUsers"`
	SurvivorPicks int   `json:"survivorPicks"`
	DryRun        bool  `json:"dryRun"`
}

// LegacyImportService copies games and picks from the legacy store into MongoDB
type LegacyImportService struct {
	source        LegacySource
	games         GameWriter
	picks         ConfidencePickWriter
	survivorPicks SurvivorPickWriter
	logger        *logging.Logger
}

// NewLegacyImportService creates a new legacy import service
func NewLegacyImportService(source LegacySource, games GameWriter, picks ConfidencePickWriter, survivorPicks SurvivorPickWriter) *LegacyImportService {
	return &LegacyImportService{
		source:        source,
		games:         games,
		picks:         picks,
		survivorPicks: survivorPicks,
		logger:        logging.WithPrefix("LegacyImport"),
	}
}

// Import copies the season's games, the confidence picks for each week that has
// games, and every survivor history. An empty weeks list means all weeks found.
// With dryRun set nothing is written.
func (s *LegacyImportService) Import(ctx context.Context, season int, weeks []int, dryRun bool) (ImportSummary, error) {
	summary := ImportSummary{Season: season, DryRun: dryRun}
	if err := ValidateSeason(season); err != nil {
		return summary, err
	}

	games, err := s.source.GetSeasonGames(ctx, season)
	if err != nil {
		return summary, fmt.Errorf("failed to read legacy games: %w", err)
	}

	byWeek := make(map[int][]models.Game)
	for _, g := range games {
		byWeek[g.Week] = append(byWeek[g.Week], g)
	}
	if len(weeks) == 0 {
		for week := range byWeek {
			weeks = append(weeks, week)
		}
	}
	sort.Ints(weeks)
	summary.Weeks = weeks

	for _, week := range weeks {
		weekGames := byWeek[week]
		if len(weekGames) == 0 {
			s.logger.Warnf("No legacy games for season %d week %d", season, week)
			continue
		}
		if !dryRun {
			if err := s.games.UpsertGames(ctx, weekGames); err != nil {
				return summary, fmt.Errorf("failed to import week %d games: %w", week, err)
			}
		}
		summary.Games += len(weekGames)

		picks, err := s.source.GetWeekPicks(ctx, season, week)
		if err != nil {
			return summary, fmt.Errorf("failed to read legacy picks for week %d: %w", week, err)
		}
		for userID, userPicks := range picks {
			if !dryRun {
				if err := s.picks.PutWeekPicks(ctx, userID, season, week, userPicks); err != nil {
					return summary, fmt.Errorf("failed to import week %d picks for %s: %w", week, userID, err)
				}
			}
			summary.PickUsers++
			summary.Picks += len(userPicks)
		}
		s.logger.Infof("Week %d: %d games, %d users with picks", week, len(weekGames), len(picks))
	}

	users, err := s.source.ListSurvivorUsers(ctx, season)
	if err != nil {
		return summary, fmt.Errorf("failed to list legacy survivor users: %w", err)
	}
	for _, userID := range users {
		history, err := s.source.GetSurvivorPickHistory(ctx, season, userID)
		if err != nil {
			return summary, fmt.Errorf("failed to read survivor history for %s: %w", userID, err)
		}
		for _, pick := range history {
			if !dryRun {
				if err := s.survivorPicks.PutSurvivorPick(ctx, userID, season, pick); err != nil {
					return summary, fmt.Errorf("failed to import survivor pick for %s week %d: %w", userID, pick.Week, err)
				}
			}
			summary.SurvivorPicks++
		}
		summary.SurvivorUsers++
	}

	return summary, nil
}
