package services

import (
	"sort"

	"nerdfootball/models"
)

// AggregateSeason folds weekly records into the ranked season leaderboard.
// The result depends only on the set of records, never on their order, so it
// can be re-derived from the store at any time.
//
// Ordering: total points descending, then cumulative accuracy descending,
// then user id ascending.
func AggregateSeason(records map[string][]models.WeeklyScoreRecord) []models.SeasonStanding {
	standings := make([]models.SeasonStanding, 0, len(records))
	for userID, weeks := range records {
		standing := models.SeasonStanding{UserID: userID}
		for _, r := range weeks {
			if r.Season > standing.Season {
				standing.Season = r.Season
			}
			standing.TotalPoints += r.TotalPoints
			standing.CorrectPicks += r.CorrectPicks
			standing.ValidPicks += r.TotalValidPicks
			if r.TotalValidPicks > 0 {
				standing.WeeksPlayed++
			}
		}
		standing.Accuracy = models.Ratio(standing.CorrectPicks, standing.ValidPicks)
		standings = append(standings, standing)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if c := compareAccuracy(a, b); c != 0 {
			return c > 0
		}
		return a.UserID < b.UserID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// compareAccuracy compares correct/valid ratios exactly by cross-multiplying
func compareAccuracy(a, b models.SeasonStanding) int {
	var left, right int64
	switch {
	case a.ValidPicks == 0 && b.ValidPicks == 0:
	case a.ValidPicks == 0:
		right = int64(b.CorrectPicks)
	case b.ValidPicks == 0:
		left = int64(a.CorrectPicks)
	default:
		left = int64(a.CorrectPicks) * int64(b.ValidPicks)
		right = int64(b.CorrectPicks) * int64(a.ValidPicks)
	}
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	}
	return 0
}

// GroupRecordsByUser prepares store output for AggregateSeason
func GroupRecordsByUser(records []models.WeeklyScoreRecord) map[string][]models.WeeklyScoreRecord {
	grouped := make(map[string][]models.WeeklyScoreRecord)
	for _, r := range records {
		grouped[r.UserID] = append(grouped[r.UserID], r)
	}
	return grouped
}
