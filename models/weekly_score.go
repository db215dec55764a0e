package models

import (
	"time"
)

// PickDiagnostics records what the scorer excluded or flagged for one user's week
type PickDiagnostics struct {
	Discarded            int      `json:"discarded" bson:"discarded"`                                               // malformed picks
	Pending              int      `json:"pending" bson:"pending"`                                                   // game missing or not final
	MissingGames         []string `json:"missingGames,omitempty" bson:"missing_games,omitempty"`                    // game ids absent from the result set
	DuplicateConfidence  []int    `json:"duplicateConfidence,omitempty" bson:"duplicate_confidence,omitempty"`     // values used more than once
	OutOfRangeConfidence []int    `json:"outOfRangeConfidence,omitempty" bson:"out_of_range_confidence,omitempty"` // values above the week's game count
}

// HasFlags returns true when the user's confidence values were not a clean permutation
func (d PickDiagnostics) HasFlags() bool {
	return len(d.DuplicateConfidence) > 0 || len(d.OutOfRangeConfidence) > 0
}

// WeeklyScoreRecord is the derived score for one user in one week.
// It is always written as a full replacement keyed by (user, season, week).
type WeeklyScoreRecord struct {
	UserID          string          `json:"userId" bson:"user_id"`
	Season          int             `json:"season" bson:"season"`
	Week            int             `json:"week" bson:"week"`
	TotalPoints     int             `json:"totalPoints" bson:"total_points"`
	CorrectPicks    int             `json:"correctPicks" bson:"correct_picks"`
	TotalValidPicks int             `json:"totalValidPicks" bson:"total_valid_picks"`
	Accuracy        float64         `json:"accuracy" bson:"accuracy"`
	Diagnostics     PickDiagnostics `json:"diagnostics" bson:"diagnostics"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updated_at"`
}

// SeasonStanding is one user's row on the season leaderboard
type SeasonStanding struct {
	UserID       string    `json:"userId" bson:"user_id"`
	Season       int       `json:"season" bson:"season"`
	Rank         int       `json:"rank" bson:"rank"`
	TotalPoints  int       `json:"totalPoints" bson:"total_points"`
	WeeksPlayed  int       `json:"weeksPlayed" bson:"weeks_played"`
	CorrectPicks int       `json:"correctPicks" bson:"correct_picks"`
	ValidPicks   int       `json:"validPicks" bson:"valid_picks"`
	Accuracy     float64   `json:"accuracy" bson:"accuracy"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// Ratio returns part/whole, or 0 when whole is zero
func Ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
