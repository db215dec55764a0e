package database

import (
	"testing"
	"time"

	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeGame(t *testing.T) {
	Convey("Given raw game documents", t, func() {
		Convey("When the document uses the canonical layout", func() {
			doc := map[string]interface{}{
				"id": "401", "season": 2025, "week": 3,
				"home_team": "PHI", "away_team": "DAL",
				"home_score": int32(24), "away_score": int32(17),
				"status": "FINAL", "winner": "PHI",
				"kickoff": time.Date(2025, 9, 21, 17, 0, 0, 0, time.UTC),
			}
			game, notes, err := NormalizeGame(doc, "", 0, 0)

			So(err, ShouldBeNil)
			So(notes, ShouldBeEmpty)
			So(game.ID, ShouldEqual, "401")
			So(game.Week, ShouldEqual, 3)
			So(game.Status, ShouldEqual, models.GameStatusFinal)
			So(game.Winner, ShouldEqual, "PHI")
			So(game.Validate(), ShouldBeNil)
		})

		Convey("When the document uses legacy short keys and full team names", func() {
			doc := map[string]interface{}{
				"h": "Philadelphia Eagles", "a": "Dallas Cowboys",
				"homeScore": "20", "awayScore": "27",
				"status": "completed", "dt": "2025-09-07T20:20Z",
			}
			game, _, err := NormalizeGame(doc, "101", 2025, 1)

			So(err, ShouldBeNil)
			So(game.ID, ShouldEqual, "101")
			So(game.HomeTeam, ShouldEqual, "PHI")
			So(game.AwayTeam, ShouldEqual, "DAL")
			So(game.Winner, ShouldEqual, "DAL")
			So(game.Kickoff.Hour(), ShouldEqual, 20)
		})

		Convey("When a final game ended level", func() {
			doc := map[string]interface{}{
				"id": "g2", "home": "NYG", "away": "WAS",
				"home_score": 20, "away_score": 20, "state": "final", "winner": "TIE",
			}
			game, notes, err := NormalizeGame(doc, "", 2025, 2)

			So(err, ShouldBeNil)
			So(notes, ShouldBeEmpty)
			So(game.AwayTeam, ShouldEqual, "WSH")
			So(game.IsTie(), ShouldBeTrue)
		})

		Convey("When a final game stores only a winner", func() {
			doc := map[string]interface{}{"id": "g3", "home": "KC", "away": "BUF", "status": "final", "winner": "Bills"}
			game, _, err := NormalizeGame(doc, "", 2025, 2)

			So(err, ShouldBeNil)
			So(game.Winner, ShouldEqual, "BUF")
		})

		Convey("When the stored winner disagrees with the score", func() {
			doc := map[string]interface{}{
				"id": "g4", "home": "KC", "away": "BUF",
				"home_score": 31, "away_score": 10, "status": "final", "winner": "BUF",
			}
			game, notes, err := NormalizeGame(doc, "", 2025, 2)

			So(err, ShouldBeNil)
			So(game.Winner, ShouldEqual, "KC")
			So(notes, ShouldHaveLength, 1)
		})

		Convey("When an in-progress game carries a winner", func() {
			doc := map[string]interface{}{
				"id": "g5", "home": "KC", "away": "BUF",
				"home_score": 7, "status": "in_play", "winner": "KC",
			}
			game, notes, err := NormalizeGame(doc, "", 2025, 2)

			So(err, ShouldBeNil)
			So(game.Status, ShouldEqual, models.GameStatusInProgress)
			So(game.Winner, ShouldEqual, "")
			So(notes, ShouldHaveLength, 1)
		})

		Convey("When the status is unknown", func() {
			doc := map[string]interface{}{"id": "g6", "home": "KC", "away": "BUF", "status": "abandoned"}
			game, notes, err := NormalizeGame(doc, "", 2025, 2)

			So(err, ShouldBeNil)
			So(game.Status, ShouldEqual, models.GameStatusScheduled)
			So(notes, ShouldHaveLength, 1)
		})

		Convey("When a team cannot be resolved", func() {
			doc := map[string]interface{}{"id": "g7", "home": "Springfield", "away": "BUF"}
			_, _, err := NormalizeGame(doc, "", 2025, 2)
			So(err, ShouldNotBeNil)
		})

		Convey("When there is no id anywhere", func() {
			_, _, err := NormalizeGame(map[string]interface{}{"home": "KC", "away": "BUF"}, "", 2025, 2)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNormalizeConfidencePicks(t *testing.T) {
	Convey("Given confidence pick documents", t, func() {
		Convey("When picks are stored in a map with legacy field names", func() {
			doc := map[string]interface{}{
				"userId": "u1",
				"picks": bson.M{
					"g1": bson.M{"winner": "Eagles", "points": "3"},
					"g2": bson.M{"team": "dal", "confidence": int32(2)},
					"g3": bson.M{"selection": "Springfield", "rank": 1},
					"g4": bson.M{"confidence": 4},
				},
			}
			userID, picks, notes := NormalizeConfidencePicks(doc, "", 2025, 1)

			So(userID, ShouldEqual, "u1")
			So(picks, ShouldHaveLength, 4)
			So(picks["g1"], ShouldResemble, models.Pick{UserID: "u1", Season: 2025, Week: 1, GameID: "g1", Team: "PHI", Confidence: 3})
			So(picks["g2"].Team, ShouldEqual, "DAL")
			So(picks["g3"].IsMalformed(), ShouldBeTrue)
			So(picks["g4"].IsMalformed(), ShouldBeTrue)
			So(notes, ShouldHaveLength, 1)
		})

		Convey("When picks are stored as an array", func() {
			doc := map[string]interface{}{
				"user_id": "u2", "season": 2025, "week": 4,
				"picks": bson.A{
					bson.M{"gameId": "g1", "team": "KC", "confidence": 1},
					bson.M{"team": "BUF", "confidence": 2},
				},
			}
			userID, picks, notes := NormalizeConfidencePicks(doc, "", 0, 0)

			So(userID, ShouldEqual, "u2")
			So(picks, ShouldHaveLength, 1)
			So(picks["g1"].Week, ShouldEqual, 4)
			So(notes, ShouldHaveLength, 1)
		})

		Convey("When each game is a top-level field of a submission document", func() {
			doc := map[string]interface{}{
				"101":         map[string]interface{}{"winner": "Arizona Cardinals", "confidence": int64(5)},
				"102":         map[string]interface{}{"winner": "SF", "confidence": int64(4)},
				"lastUpdated": time.Now(),
				"userName":    "Someone",
			}
			userID, picks, _ := NormalizeConfidencePicks(doc, "uid-from-doc-ref", 2025, 1)

			So(userID, ShouldEqual, "uid-from-doc-ref")
			So(picks, ShouldHaveLength, 2)
			So(picks["101"].Team, ShouldEqual, "ARI")
			So(picks["102"].Confidence, ShouldEqual, 4)
		})
	})
}

func TestNormalizeSurvivorPicks(t *testing.T) {
	Convey("Given survivor documents", t, func() {
		Convey("When a per-user document holds picks keyed by week", func() {
			doc := map[string]interface{}{
				"picks": map[string]interface{}{
					"3":   map[string]interface{}{"team": "Eagles"},
					"1":   map[string]interface{}{"team": "KC"},
					"2":   "Bills",
					"bye": map[string]interface{}{"team": "DAL"},
					"4":   map[string]interface{}{"team": "Atoms"},
				},
			}
			userID, picks, notes := NormalizeSurvivorPicks(doc, "u9")

			So(userID, ShouldEqual, "u9")
			So(picks, ShouldResemble, []models.SurvivorPick{
				{Week: 1, Team: "KC"},
				{Week: 2, Team: "BUF"},
				{Week: 3, Team: "PHI"},
				{Week: 4, Team: ""},
			})
			So(notes, ShouldHaveLength, 2)
		})

		Convey("When a row document holds a single week", func() {
			doc := map[string]interface{}{"user_id": "u1", "season": 2025, "week": int32(2), "team": "NE"}
			userID, picks, notes := NormalizeSurvivorPicks(doc, "")

			So(userID, ShouldEqual, "u1")
			So(picks, ShouldResemble, []models.SurvivorPick{{Week: 2, Team: "NE"}})
			So(notes, ShouldBeEmpty)
		})
	})
}
