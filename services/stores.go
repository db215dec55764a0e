package services

import (
	"context"

	"nerdfootball/models"
)

// GameReader reads the game result store
type GameReader interface {
	GetWeekGames(ctx context.Context, season, week int) ([]models.Game, error)
	GetSeasonGames(ctx context.Context, season int) ([]models.Game, error)
}

// ConfidencePickReader reads submitted confidence picks
type ConfidencePickReader interface {
	GetWeekPicks(ctx context.Context, season, week int) (models.WeekPicks, error)
}

// SurvivorPickReader reads submitted survivor picks
type SurvivorPickReader interface {
	ListSurvivorUsers(ctx context.Context, season int) ([]string, error)
	GetSurvivorPickHistory(ctx context.Context, season int, userID string) ([]models.SurvivorPick, error)
}

// WeeklyScoreStore holds derived weekly score records
type WeeklyScoreStore interface {
	PutWeeklyScore(ctx context.Context, record models.WeeklyScoreRecord) error
	GetWeekScores(ctx context.Context, season, week int) ([]models.WeeklyScoreRecord, error)
	GetSeasonWeeklyScores(ctx context.Context, season int) ([]models.WeeklyScoreRecord, error)
	DeleteWeeklyScore(ctx context.Context, season, week int, userID string) error
}

// SeasonStandingStore holds the season leaderboard projection
type SeasonStandingStore interface {
	PutSeasonStanding(ctx context.Context, standing models.SeasonStanding) error
	GetSeasonStandings(ctx context.Context, season int) ([]models.SeasonStanding, error)
	DeleteSeasonStanding(ctx context.Context, season int, userID string) error
}

// SurvivorStatusStore holds evaluated survivor entries
type SurvivorStatusStore interface {
	PutSurvivorStatus(ctx context.Context, entry models.SurvivorEntry) error
	GetSurvivorStatus(ctx context.Context, season int, userID string) (*models.SurvivorEntry, error)
	GetSeasonSurvivorStatuses(ctx context.Context, season int) ([]models.SurvivorEntry, error)
}

// Stores bundles the collaborators a Coordinator reads from and writes to
type Stores struct {
	Games           GameReader
	ConfidencePicks ConfidencePickReader
	SurvivorPicks   SurvivorPickReader
	WeeklyScores    WeeklyScoreStore
	Standings       SeasonStandingStore
	Survivor        SurvivorStatusStore
}

// CacheInvalidator drops derived projections after a write
type CacheInvalidator interface {
	Invalidate(keys ...string)
}
