package models

import (
	"fmt"
	"time"
)

// GameStatus represents the lifecycle state of a game as reported by the sync layer
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "SCHEDULED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusFinal      GameStatus = "FINAL"
)

// Game is one authoritative matchup record for a week.
// Winner is empty while the game is undecided and when a final game ended tied.
type Game struct {
	ID        string     `json:"id" bson:"id"`
	Season    int        `json:"season" bson:"season"`
	Week      int        `json:"week" bson:"week"`
	HomeTeam  string     `json:"homeTeam" bson:"home_team"`
	AwayTeam  string     `json:"awayTeam" bson:"away_team"`
	HomeScore int        `json:"homeScore" bson:"home_score"`
	AwayScore int        `json:"awayScore" bson:"away_score"`
	Status    GameStatus `json:"status" bson:"status"`
	Winner    string     `json:"winner,omitempty" bson:"winner,omitempty"`
	Kickoff   time.Time  `json:"kickoff" bson:"kickoff"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

// IsFinal returns true if the game result can be scored
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal
}

// IsInProgress returns true if the game is currently being played
func (g *Game) IsInProgress() bool {
	return g.Status == GameStatusInProgress
}

// IsTie returns true for a final game without a winner
func (g *Game) IsTie() bool {
	return g.IsFinal() && g.Winner == ""
}

// HasTeam reports whether team plays in this game
func (g *Game) HasTeam(team string) bool {
	return team != "" && (g.HomeTeam == team || g.AwayTeam == team)
}

// Matchup returns a short "AWAY @ HOME" description
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.AwayTeam, g.HomeTeam)
}

// DeriveWinner computes the winner from the scores of a final game.
// Returns "" for a tie or a game that is not final.
func DeriveWinner(g Game) string {
	if !g.IsFinal() {
		return ""
	}
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam
	}
	return ""
}

// Validate checks the status and winner invariants of a game record
func (g *Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game has no id")
	}
	switch g.Status {
	case GameStatusScheduled, GameStatusInProgress, GameStatusFinal:
	default:
		return fmt.Errorf("game %s: unknown status %q", g.ID, g.Status)
	}
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return fmt.Errorf("game %s: missing team", g.ID)
	}
	if g.HomeTeam == g.AwayTeam {
		return fmt.Errorf("game %s: %s listed as both home and away", g.ID, g.HomeTeam)
	}
	if !g.IsFinal() {
		if g.Winner != "" {
			return fmt.Errorf("game %s: winner %s set on %s game", g.ID, g.Winner, g.Status)
		}
		return nil
	}
	if g.HomeScore == g.AwayScore && g.Winner != "" {
		return fmt.Errorf("game %s: winner %s set on tied final %d-%d", g.ID, g.Winner, g.AwayScore, g.HomeScore)
	}
	if g.Winner != "" && !g.HasTeam(g.Winner) {
		return fmt.Errorf("game %s: winner %s is not playing in %s", g.ID, g.Winner, g.Matchup())
	}
	return nil
}

// GamesByID indexes a week's games by id
func GamesByID(games []Game) map[string]Game {
	indexed := make(map[string]Game, len(games))
	for _, game := range games {
		indexed[game.ID] = game
	}
	return indexed
}

// GamesByWeek groups games into week -> id -> game
func GamesByWeek(games []Game) map[int]map[string]Game {
	grouped := make(map[int]map[string]Game)
	for _, game := range games {
		week, ok := grouped[game.Week]
		if !ok {
			week = make(map[string]Game)
			grouped[game.Week] = week
		}
		week[game.ID] = game
	}
	return grouped
}
