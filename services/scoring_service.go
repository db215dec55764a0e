package services

import (
	"sort"

	"nerdfootball/models"
)

// ScoreWeek scores every user's confidence picks against one week of results.
// It is pure: the same games and picks always produce the same records, and
// finalizing more games can only move picks from pending into the scored set.
func ScoreWeek(season, week int, games map[string]models.Game, picks models.WeekPicks) map[string]models.WeeklyScoreRecord {
	records := make(map[string]models.WeeklyScoreRecord, len(picks))
	for userID, userPicks := range picks {
		records[userID] = ScoreUser(season, week, userID, games, userPicks)
	}
	return records
}

// ScoreUser scores one user's picks for the week. Picks are keyed by game id.
//
//   - a pick without a team or confidence is discarded
//   - a pick on a missing or unfinished game is pending and excluded from every count
//   - a final game without a winner is a tie and every pick on it earns its confidence
//   - otherwise the pick is correct when its team is the winner
func ScoreUser(season, week int, userID string, games map[string]models.Game, userPicks map[string]models.Pick) models.WeeklyScoreRecord {
	record := models.WeeklyScoreRecord{
		UserID: userID,
		Season: season,
		Week:   week,
	}
	diag := &record.Diagnostics

	// The week has at least as many games as the result set plus any picked
	// game missing from it; confidence above that is out of range.
	weekSize := len(games)
	for gameID := range userPicks {
		if _, ok := games[gameID]; !ok {
			weekSize++
		}
	}

	seen := make(map[int]int)
	for gameID, pick := range userPicks {
		if pick.IsMalformed() {
			diag.Discarded++
			continue
		}

		seen[pick.Confidence]++
		if weekSize > 0 && pick.Confidence > weekSize {
			diag.OutOfRangeConfidence = append(diag.OutOfRangeConfidence, pick.Confidence)
		}

		game, ok := games[gameID]
		if !ok {
			diag.Pending++
			diag.MissingGames = append(diag.MissingGames, gameID)
			continue
		}
		if !game.IsFinal() {
			diag.Pending++
			continue
		}

		record.TotalValidPicks++
		if game.Winner == "" || pick.Team == game.Winner {
			record.CorrectPicks++
			record.TotalPoints += pick.Confidence
		}
	}

	for confidence, count := range seen {
		if count > 1 {
			diag.DuplicateConfidence = append(diag.DuplicateConfidence, confidence)
		}
	}
	sort.Ints(diag.DuplicateConfidence)
	sort.Ints(diag.OutOfRangeConfidence)
	sort.Strings(diag.MissingGames)

	record.Accuracy = models.Ratio(record.CorrectPicks, record.TotalValidPicks)
	return record
}
