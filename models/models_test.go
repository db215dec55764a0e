package models

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonicalTeam(t *testing.T) {
	Convey("Given team identifiers in the formats found in stored picks", t, func() {
		Convey("When the input is already an abbreviation", func() {
			abbr, ok := CanonicalTeam("PHI")
			So(ok, ShouldBeTrue)
			So(abbr, ShouldEqual, "PHI")
		})

		Convey("When the input is a full name or nickname", func() {
			for _, raw := range []string{"Philadelphia Eagles", "Eagles", "  philadelphia   eagles ", "eagles"} {
				abbr, ok := CanonicalTeam(raw)
				So(ok, ShouldBeTrue)
				So(abbr, ShouldEqual, "PHI")
			}
		})

		Convey("When the input is a retired or alternate code", func() {
			cases := map[string]string{
				"WAS":                 "WSH",
				"Washington Redskins": "WSH",
				"JAC":                 "JAX",
				"Oakland Raiders":     "LV",
				"St. Louis Rams":      "LAR",
				"SD":                  "LAC",
			}
			for raw, want := range cases {
				abbr, ok := CanonicalTeam(raw)
				So(ok, ShouldBeTrue)
				So(abbr, ShouldEqual, want)
			}
		})

		Convey("When the input is empty or unknown", func() {
			_, ok := CanonicalTeam("")
			So(ok, ShouldBeFalse)
			_, ok = CanonicalTeam("Springfield Atoms")
			So(ok, ShouldBeFalse)
		})

		Convey("Then every team resolves from its own full name", func() {
			for _, team := range AllTeams() {
				abbr, ok := CanonicalTeam(team.FullName())
				So(ok, ShouldBeTrue)
				So(abbr, ShouldEqual, team.Abbr)
			}
			So(len(AllTeams()), ShouldEqual, 32)
		})
	})
}

func TestGameValidate(t *testing.T) {
	Convey("Given game records from the sync layer", t, func() {
		base := Game{ID: "g1", Season: 2025, Week: 1, HomeTeam: "PHI", AwayTeam: "DAL"}

		Convey("When a scheduled game has no winner", func() {
			g := base
			g.Status = GameStatusScheduled
			So(g.Validate(), ShouldBeNil)
		})

		Convey("When a non-final game carries a winner", func() {
			g := base
			g.Status = GameStatusInProgress
			g.Winner = "PHI"
			So(g.Validate(), ShouldNotBeNil)
		})

		Convey("When a tied final game carries a winner", func() {
			g := base
			g.Status = GameStatusFinal
			g.HomeScore, g.AwayScore = 20, 20
			g.Winner = "DAL"
			So(g.Validate(), ShouldNotBeNil)
		})

		Convey("When the winner is not one of the teams", func() {
			g := base
			g.Status = GameStatusFinal
			g.HomeScore = 10
			g.Winner = "NYG"
			So(g.Validate(), ShouldNotBeNil)
		})

		Convey("When a final game is consistent", func() {
			g := base
			g.Status = GameStatusFinal
			g.HomeScore, g.AwayScore = 24, 17
			g.Winner = DeriveWinner(g)
			So(g.Winner, ShouldEqual, "PHI")
			So(g.Validate(), ShouldBeNil)
			So(g.IsTie(), ShouldBeFalse)
		})

		Convey("When a final game is tied", func() {
			g := base
			g.Status = GameStatusFinal
			g.HomeScore, g.AwayScore = 13, 13
			So(DeriveWinner(g), ShouldEqual, "")
			So(g.IsTie(), ShouldBeTrue)
		})
	})
}

func TestPickHelpers(t *testing.T) {
	Convey("Given confidence picks", t, func() {
		So(Pick{Team: "PHI", Confidence: 3}.IsMalformed(), ShouldBeFalse)
		So(Pick{Team: "", Confidence: 3}.IsMalformed(), ShouldBeTrue)
		So(Pick{Team: "PHI"}.IsMalformed(), ShouldBeTrue)
		So(Pick{Team: "PHI", Confidence: -1}.IsMalformed(), ShouldBeTrue)

		Convey("The triangular bound matches 1+..+n", func() {
			So(MaxWeeklyScore(16), ShouldEqual, 136)
			So(MaxWeeklyScore(3), ShouldEqual, 6)
			So(MaxWeeklyScore(0), ShouldEqual, 0)
		})

		Convey("WeekPicks groups by user then game", func() {
			wp := WeekPicks{}
			wp.Add(Pick{UserID: "u1", GameID: "g1", Team: "PHI", Confidence: 1})
			wp.Add(Pick{UserID: "u1", GameID: "g2", Team: "DAL", Confidence: 2})
			wp.Add(Pick{UserID: "u2", GameID: "g1", Team: "NYG", Confidence: 1})
			So(len(wp), ShouldEqual, 2)
			So(len(wp["u1"]), ShouldEqual, 2)
			So(wp["u2"]["g1"].Team, ShouldEqual, "NYG")
		})
	})
}

func TestSurvivorEntryClone(t *testing.T) {
	Convey("Given a survivor entry with history", t, func() {
		entry := NewSurvivorEntry("u1", 2025)
		entry.PickHistory = append(entry.PickHistory, SurvivorPick{Week: 1, Team: "PHI"})

		Convey("When the clone is modified", func() {
			clone := entry.Clone()
			clone.PickHistory[0].Team = "DAL"
			clone.PickHistory = append(clone.PickHistory, SurvivorPick{Week: 2, Team: "KC"})

			Convey("Then the original is untouched", func() {
				So(entry.PickHistory, ShouldHaveLength, 1)
				So(entry.PickHistory[0].Team, ShouldEqual, "PHI")
				So(entry.UsedTeams(), ShouldContainKey, "PHI")
			})
		})
	})
}
