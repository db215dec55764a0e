package database

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field-name variants seen across historical documents, most specific first
var (
	gameIDFields     = []string{"id", "game_id", "gameId", "espnId"}
	homeTeamFields   = []string{"home_team", "homeTeam", "home", "h"}
	awayTeamFields   = []string{"away_team", "awayTeam", "away", "a"}
	homeScoreFields  = []string{"home_score", "homeScore", "h_score"}
	awayScoreFields  = []string{"away_score", "awayScore", "a_score"}
	statusFields     = []string{"status", "state", "gameStatus"}
	kickoffFields    = []string{"kickoff", "date", "dateTime", "dt", "t"}
	winnerFields     = []string{"winner", "winningTeam", "w"}
	userIDFields     = []string{"user_id", "userId", "uid"}
	pickTeamFields   = []string{"team", "winner", "pick", "selection", "teamPicked"}
	confidenceFields = []string{"confidence", "points", "rank", "weight", "confidenceLevel"}
	pickGameFields   = []string{"game_id", "gameId", "game"}
)

// Top-level keys of a legacy pick document that are never game ids
var pickMetadataKeys = map[string]bool{
	"_id": true, "id": true, "user_id": true, "userId": true, "uid": true,
	"season": true, "week": true, "picks": true, "userName": true, "displayName": true,
	"created_at": true, "updated_at": true, "createdAt": true, "updatedAt": true,
	"submittedAt": true, "lastUpdated": true, "timestamp": true,
}

func firstField(doc map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case bson.M:
		return m, true
	case bson.D:
		return m.Map(), true
	}
	return nil, false
}

func asSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case bson.A:
		return s, true
	}
	return nil, false
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case int, int32, int64:
		return fmt.Sprintf("%d", s), true
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10), true
		}
	case json.Number:
		return s.String(), true
	case primitive.ObjectID:
		return s.Hex(), true
	}
	return "", false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

var kickoffLayouts = []string{time.RFC3339, "2006-01-02T15:04Z", "2006-01-02T15:04:05", "2006-01-02 15:04"}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case primitive.DateTime:
		return t.Time().UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	case string:
		for _, layout := range kickoffLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// NormalizeStatus maps feed and legacy status spellings to a GameStatus
func NormalizeStatus(raw string) (models.GameStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scheduled", "pre", "pre-game", "pregame", "status_scheduled", "postponed", "delayed", "":
		return models.GameStatusScheduled, true
	case "in_progress", "in_play", "in progress", "live", "halftime", "status_in_progress", "status_halftime", "status_end_period":
		return models.GameStatusInProgress, true
	case "final", "completed", "complete", "post", "status_final", "final/ot", "f", "f/ot":
		return models.GameStatusFinal, true
	}
	return models.GameStatusScheduled, false
}

func canonicalTeamField(doc map[string]interface{}, keys []string) (team string, raw string, present bool) {
	v, ok := firstField(doc, keys...)
	if !ok {
		return "", "", false
	}
	raw, _ = asString(v)
	if raw == "" {
		return "", "", false
	}
	team, _ = models.CanonicalTeam(raw)
	return team, raw, true
}

func isTieMarker(raw string) bool {
	switch strings.ToLower(raw) {
	case "tie", "push", "draw":
		return true
	}
	return false
}

// NormalizeGame converts a raw game document into the canonical Game.
// fallbackID, season and week are used when the document omits them.
// A game whose teams cannot be resolved is rejected; softer problems are returned as notes.
func NormalizeGame(doc map[string]interface{}, fallbackID string, season, week int) (models.Game, []string, error) {
	var notes []string
	game := models.Game{Season: season, Week: week}

	game.ID = fallbackID
	if v, ok := firstField(doc, gameIDFields...); ok {
		if id, ok := asString(v); ok && id != "" {
			game.ID = id
		}
	}
	if game.ID == "" {
		return game, nil, fmt.Errorf("game document has no id")
	}
	if v, ok := firstField(doc, "season"); ok {
		if n, ok := asInt(v); ok {
			game.Season = n
		}
	}
	if v, ok := firstField(doc, "week"); ok {
		if n, ok := asInt(v); ok {
			game.Week = n
		}
	}

	var rawHome, rawAway string
	game.HomeTeam, rawHome, _ = canonicalTeamField(doc, homeTeamFields)
	game.AwayTeam, rawAway, _ = canonicalTeamField(doc, awayTeamFields)
	if game.HomeTeam == "" || game.AwayTeam == "" {
		return game, nil, fmt.Errorf("game %s: unresolvable teams home=%q away=%q", game.ID, rawHome, rawAway)
	}

	_, hasHomeScore := firstField(doc, homeScoreFields...)
	_, hasAwayScore := firstField(doc, awayScoreFields...)
	if v, ok := firstField(doc, homeScoreFields...); ok {
		game.HomeScore, _ = asInt(v)
	}
	if v, ok := firstField(doc, awayScoreFields...); ok {
		game.AwayScore, _ = asInt(v)
	}
	hasScores := (hasHomeScore || hasAwayScore) && (game.HomeScore != 0 || game.AwayScore != 0)

	game.Status = models.GameStatusScheduled
	if v, ok := firstField(doc, statusFields...); ok {
		raw, _ := asString(v)
		status, known := NormalizeStatus(raw)
		if !known {
			notes = append(notes, fmt.Sprintf("game %s: unknown status %q treated as SCHEDULED", game.ID, raw))
		}
		game.Status = status
	}

	if v, ok := firstField(doc, kickoffFields...); ok {
		if t, ok := asTime(v); ok {
			game.Kickoff = t
		}
	}

	winner, rawWinner, hasWinner := canonicalTeamField(doc, winnerFields)
	if hasWinner && winner == "" && !isTieMarker(rawWinner) {
		notes = append(notes, fmt.Sprintf("game %s: unknown winner %q ignored", game.ID, rawWinner))
	}
	if winner != "" && !game.HasTeam(winner) {
		notes = append(notes, fmt.Sprintf("game %s: winner %s not in %s, ignored", game.ID, winner, game.Matchup()))
		winner = ""
	}

	switch {
	case !game.IsFinal():
		if winner != "" {
			notes = append(notes, fmt.Sprintf("game %s: winner %s cleared on %s game", game.ID, winner, game.Status))
		}
		game.Winner = ""
	case hasScores:
		derived := models.DeriveWinner(game)
		if winner != "" && winner != derived {
			notes = append(notes, fmt.Sprintf("game %s: stored winner %q disagrees with score %d-%d", game.ID, winner, game.AwayScore, game.HomeScore))
		}
		game.Winner = derived
	default:
		game.Winner = winner
	}

	return game, notes, nil
}

func normalizePickEntry(userID, gameID string, entry map[string]interface{}, season, week int) (models.Pick, []string) {
	var notes []string
	pick := models.Pick{UserID: userID, Season: season, Week: week, GameID: gameID}

	team, raw, present := canonicalTeamField(entry, pickTeamFields)
	if present && team == "" {
		notes = append(notes, fmt.Sprintf("user %s game %s: unknown team %q", userID, gameID, raw))
	}
	pick.Team = team

	if v, ok := firstField(entry, confidenceFields...); ok {
		if n, ok := asInt(v); ok {
			pick.Confidence = n
		} else {
			notes = append(notes, fmt.Sprintf("user %s game %s: unreadable confidence %v", userID, gameID, v))
		}
	}
	return pick, notes
}

// NormalizeConfidencePicks converts one user's week document into picks keyed by game id.
// Accepts a "picks" map, a "picks" array, or the legacy layout where each game id is a top-level field.
func NormalizeConfidencePicks(doc map[string]interface{}, fallbackUserID string, season, week int) (string, map[string]models.Pick, []string) {
	var notes []string
	userID := fallbackUserID
	if v, ok := firstField(doc, userIDFields...); ok {
		if id, ok := asString(v); ok && id != "" {
			userID = id
		}
	}
	if v, ok := firstField(doc, "season"); ok {
		if n, ok := asInt(v); ok {
			season = n
		}
	}
	if v, ok := firstField(doc, "week"); ok {
		if n, ok := asInt(v); ok {
			week = n
		}
	}

	picks := make(map[string]models.Pick)
	add := func(gameID string, entry map[string]interface{}) {
		if gameID == "" {
			notes = append(notes, fmt.Sprintf("user %s: pick without game id skipped", userID))
			return
		}
		pick, pickNotes := normalizePickEntry(userID, gameID, entry, season, week)
		notes = append(notes, pickNotes...)
		picks[gameID] = pick
	}

	container, hasContainer := doc["picks"]
	switch {
	case hasContainer:
		if m, ok := asMap(container); ok {
			for gameID, v := range m {
				if entry, ok := asMap(v); ok {
					add(gameID, entry)
				}
			}
		} else if list, ok := asSlice(container); ok {
			for _, v := range list {
				entry, ok := asMap(v)
				if !ok {
					continue
				}
				gameID := ""
				if g, ok := firstField(entry, pickGameFields...); ok {
					gameID, _ = asString(g)
				}
				add(gameID, entry)
			}
		}
	default:
		for key, v := range doc {
			if pickMetadataKeys[key] {
				continue
			}
			if entry, ok := asMap(v); ok {
				add(key, entry)
			}
		}
	}

	return userID, picks, notes
}

// NormalizeSurvivorPicks converts a survivor document into week-ordered picks.
// Handles one-pick-per-document rows ({week, team}) and per-user documents
// holding a "picks" map keyed by week number.
func NormalizeSurvivorPicks(doc map[string]interface{}, fallbackUserID string) (string, []models.SurvivorPick, []string) {
	var notes []string
	userID := fallbackUserID
	if v, ok := firstField(doc, userIDFields...); ok {
		if id, ok := asString(v); ok && id != "" {
			userID = id
		}
	}

	var picks []models.SurvivorPick
	add := func(week int, entry map[string]interface{}) {
		team, raw, present := canonicalTeamField(entry, pickTeamFields)
		if present && team == "" {
			notes = append(notes, fmt.Sprintf("user %s week %d: unknown survivor team %q", userID, week, raw))
		}
		picks = append(picks, models.SurvivorPick{Week: week, Team: team})
	}

	if container, ok := asMap(doc["picks"]); ok {
		for key, v := range container {
			week, ok := asInt(key)
			if !ok || week <= 0 {
				notes = append(notes, fmt.Sprintf("user %s: survivor pick under non-week key %q skipped", userID, key))
				continue
			}
			switch entry := v.(type) {
			case string:
				add(week, map[string]interface{}{"team": entry})
			default:
				if m, ok := asMap(entry); ok {
					add(week, m)
				}
			}
		}
	} else if v, ok := firstField(doc, "week"); ok {
		if week, ok := asInt(v); ok && week > 0 {
			add(week, doc)
		} else {
			notes = append(notes, fmt.Sprintf("user %s: survivor pick with invalid week %v skipped", userID, v))
		}
	}

	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Week < picks[j].Week })
	return userID, picks, notes
}
