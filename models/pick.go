package models

// Pick is one user's confidence-pool selection for one game.
// Confidence of zero means the value was missing or unreadable.
type Pick struct {
	UserID     string `json:"userId" bson:"user_id"`
	Season     int    `json:"season" bson:"season"`
	Week       int    `json:"week" bson:"week"`
	GameID     string `json:"gameId" bson:"game_id"`
	Team       string `json:"team,omitempty" bson:"team,omitempty"`
	Confidence int    `json:"confidence,omitempty" bson:"confidence,omitempty"`
}

// IsMalformed returns true if the pick lacks a team or a usable confidence value
func (p Pick) IsMalformed() bool {
	return p.Team == "" || p.Confidence <= 0
}

// WeekPicks holds a week of confidence picks keyed by user id, then game id
type WeekPicks map[string]map[string]Pick

// Add stores a pick under its user and game
func (wp WeekPicks) Add(p Pick) {
	user, ok := wp[p.UserID]
	if !ok {
		user = make(map[string]Pick)
		wp[p.UserID] = user
	}
	user[p.GameID] = p
}

// MaxWeeklyScore is the best possible total for a week of n games (1+2+...+n)
func MaxWeeklyScore(n int) int {
	if n <= 0 {
		return 0
	}
	return n * (n + 1) / 2
}
