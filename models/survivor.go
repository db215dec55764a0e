package models

import (
	"time"
)

// SurvivorStatus is the state of a survivor-pool entry
type SurvivorStatus string

const (
	SurvivorAlive      SurvivorStatus = "ALIVE"
	SurvivorEliminated SurvivorStatus = "ELIMINATED"
)

// EliminationReason explains why an entry left the pool
type EliminationReason string

const (
	ReasonNoPick         EliminationReason = "no pick"
	ReasonDuplicateTeam  EliminationReason = "duplicate team"
	ReasonTeamLost       EliminationReason = "team lost"
	ReasonTeamNotPlaying EliminationReason = "team not playing"
)

// SurvivorPick is a user's single team selection for a week
type SurvivorPick struct {
	Week int    `json:"week" bson:"week"`
	Team string `json:"team" bson:"team"`
}

// SurvivorOverride is the audit record of an administrative reinstatement
type SurvivorOverride struct {
	ID            string            `json:"id" bson:"id"`
	Actor         string            `json:"actor" bson:"actor"`
	Note          string            `json:"note" bson:"note"`
	ClearedWeek   int               `json:"clearedWeek" bson:"cleared_week"`
	ClearedReason EliminationReason `json:"clearedReason" bson:"cleared_reason"`
	At            time.Time         `json:"at" bson:"at"`
}

// SurvivorEntry is one user's season-long survivor state.
// EliminatedWeek is 0 while the entry is alive.
type SurvivorEntry struct {
	UserID            string             `json:"userId" bson:"user_id"`
	Season            int                `json:"season" bson:"season"`
	Status            SurvivorStatus     `json:"status" bson:"status"`
	EliminatedWeek    int                `json:"eliminatedWeek,omitempty" bson:"eliminated_week,omitempty"`
	Reason            EliminationReason  `json:"reason,omitempty" bson:"reason,omitempty"`
	PickHistory       []SurvivorPick     `json:"pickHistory" bson:"pick_history"`
	LastEvaluatedWeek int                `json:"lastEvaluatedWeek" bson:"last_evaluated_week"`
	Flags             []string           `json:"flags,omitempty" bson:"flags,omitempty"`
	Overrides         []SurvivorOverride `json:"overrides,omitempty" bson:"overrides,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NewSurvivorEntry creates the implicit entry for a user's first survivor pick
func NewSurvivorEntry(userID string, season int) SurvivorEntry {
	return SurvivorEntry{
		UserID:      userID,
		Season:      season,
		Status:      SurvivorAlive,
		PickHistory: []SurvivorPick{},
	}
}

// IsEliminated returns true once the entry has reached the terminal state
func (e *SurvivorEntry) IsEliminated() bool {
	return e.Status == SurvivorEliminated
}

// UsedTeams returns the set of teams already spent in the pick history
func (e *SurvivorEntry) UsedTeams() map[string]int {
	used := make(map[string]int, len(e.PickHistory))
	for _, p := range e.PickHistory {
		if _, seen := used[p.Team]; !seen {
			used[p.Team] = p.Week
		}
	}
	return used
}

// Clone returns a deep copy so callers can evolve an entry without aliasing slices
func (e SurvivorEntry) Clone() SurvivorEntry {
	out := e
	out.PickHistory = append([]SurvivorPick{}, e.PickHistory...)
	if e.Flags != nil {
		out.Flags = append([]string{}, e.Flags...)
	}
	if e.Overrides != nil {
		out.Overrides = append([]SurvivorOverride{}, e.Overrides...)
	}
	return out
}
