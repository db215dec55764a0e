package services

import (
	"testing"
	"time"

	"nerdfootball/models"

	. "github.com/smartystreets/goconvey/convey"
)

var seasonStart = time.Date(2025, time.September, 4, 20, 20, 0, 0, time.UTC)

// survivorGame builds a week's game; winner "" with final status is a tie
func survivorGame(week int, id, home, away string, status models.GameStatus, winner string) models.Game {
	return models.Game{
		ID:       id,
		Season:   2025,
		Week:     week,
		HomeTeam: home,
		AwayTeam: away,
		Status:   status,
		Winner:   winner,
		Kickoff:  seasonStart.Add(time.Duration(week-1) * 7 * 24 * time.Hour),
	}
}

func weekOf(games ...models.Game) map[string]models.Game {
	return models.GamesByID(games)
}

func TestEvaluateSurvivor(t *testing.T) {
	now := seasonStart.Add(60 * 24 * time.Hour)

	Convey("Given a user who picks the Eagles twice", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusFinal, "PHI")),
			2: weekOf(survivorGame(2, "w2", "KC", "BUF", models.GameStatusFinal, "KC")),
			3: weekOf(survivorGame(3, "w3", "PHI", "NYG", models.GameStatusFinal, "PHI")),
		}
		picks := []models.SurvivorPick{
			{Week: 1, Team: "PHI"},
			{Week: 2, Team: "KC"},
			{Week: 3, Team: "PHI"},
		}
		entry := models.NewSurvivorEntry("u1", 2025)

		Convey("When the season is evaluated", func() {
			out, findings := EvaluateSurvivor(entry, picks, games, now)

			Convey("Then the repeat eliminates in week 3 even though the Eagles won", func() {
				So(out.Status, ShouldEqual, models.SurvivorEliminated)
				So(out.EliminatedWeek, ShouldEqual, 3)
				So(out.Reason, ShouldEqual, models.ReasonDuplicateTeam)
				So(out.LastEvaluatedWeek, ShouldEqual, 3)
				So(out.PickHistory, ShouldResemble, picks)
				So(findings, ShouldBeEmpty)
			})

			Convey("Then evaluating again changes nothing", func() {
				again, more := EvaluateSurvivor(out, picks, games, now)
				So(again, ShouldResemble, out)
				So(more, ShouldBeEmpty)
			})
		})

		Convey("When only week 1 has been played", func() {
			out, _ := EvaluateSurvivor(entry, picks, map[int]map[string]models.Game{1: games[1]}, now)

			Convey("Then the user is alive with one pick recorded", func() {
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.LastEvaluatedWeek, ShouldEqual, 1)
				So(out.PickHistory, ShouldResemble, []models.SurvivorPick{{Week: 1, Team: "PHI"}})
			})
		})

		Convey("Then the input entry is never mutated", func() {
			EvaluateSurvivor(entry, picks, games, now)
			So(entry.PickHistory, ShouldBeEmpty)
			So(entry.Status, ShouldEqual, models.SurvivorAlive)
		})
	})

	Convey("Given a picked team that loses", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "SF", "SEA", models.GameStatusFinal, "SEA")),
			2: weekOf(survivorGame(2, "w2", "SF", "LAR", models.GameStatusFinal, "SF")),
		}
		picks := []models.SurvivorPick{{Week: 1, Team: "SF"}, {Week: 2, Team: "SF"}}

		Convey("Then the entry is eliminated that week and evaluation stops", func() {
			out, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)
			So(out.Status, ShouldEqual, models.SurvivorEliminated)
			So(out.EliminatedWeek, ShouldEqual, 1)
			So(out.Reason, ShouldEqual, models.ReasonTeamLost)
			So(len(out.PickHistory), ShouldEqual, 1)
		})
	})

	Convey("Given a picked team that ties", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "NYG", "WSH", models.GameStatusFinal, "")),
			2: weekOf(survivorGame(2, "w2", "NYG", "DAL", models.GameStatusFinal, "DAL")),
		}
		picks := []models.SurvivorPick{{Week: 1, Team: "WSH"}, {Week: 2, Team: "WSH"}}

		Convey("Then the user survives but the team is spent", func() {
			out, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)
			So(out.EliminatedWeek, ShouldEqual, 2)
			So(out.Reason, ShouldEqual, models.ReasonDuplicateTeam)
			So(out.PickHistory[0], ShouldResemble, models.SurvivorPick{Week: 1, Team: "WSH"})
		})
	})

	Convey("Given a week still being played", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusFinal, "PHI")),
			2: weekOf(
				survivorGame(2, "w2a", "KC", "BUF", models.GameStatusInProgress, ""),
				survivorGame(2, "w2b", "MIA", "NE", models.GameStatusFinal, "NE"),
			),
		}

		Convey("When the picked game is not final", func() {
			picks := []models.SurvivorPick{{Week: 1, Team: "PHI"}, {Week: 2, Team: "KC"}}
			out, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)

			Convey("Then evaluation waits at that week", func() {
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.LastEvaluatedWeek, ShouldEqual, 1)
				So(len(out.PickHistory), ShouldEqual, 1)
			})

			Convey("Then finishing the game resumes from week 2", func() {
				g := games[2]["w2a"]
				g.Status = models.GameStatusFinal
				g.Winner = "KC"
				games[2]["w2a"] = g
				resumed, _ := EvaluateSurvivor(out, picks, games, now)
				So(resumed.LastEvaluatedWeek, ShouldEqual, 2)
				So(len(resumed.PickHistory), ShouldEqual, 2)
			})
		})

		Convey("When the user has no pick for the week", func() {
			picks := []models.SurvivorPick{{Week: 1, Team: "PHI"}}
			out, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)

			Convey("Then elimination waits until every game is final", func() {
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.LastEvaluatedWeek, ShouldEqual, 1)
			})

			Convey("Then the user is eliminated once the week is over", func() {
				g := games[2]["w2a"]
				g.Status = models.GameStatusFinal
				g.Winner = "BUF"
				games[2]["w2a"] = g
				done, _ := EvaluateSurvivor(out, picks, games, now)
				So(done.Status, ShouldEqual, models.SurvivorEliminated)
				So(done.EliminatedWeek, ShouldEqual, 2)
				So(done.Reason, ShouldEqual, models.ReasonNoPick)
			})
		})
	})

	Convey("Given a pick made before the week's first kickoff", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusScheduled, "")),
		}
		picks := []models.SurvivorPick{{Week: 1, Team: "PHI"}}

		Convey("Then nothing is decided yet", func() {
			out, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, seasonStart.Add(-time.Hour))
			So(out.Status, ShouldEqual, models.SurvivorAlive)
			So(out.LastEvaluatedWeek, ShouldEqual, 0)
			So(out.PickHistory, ShouldBeEmpty)
		})
	})

	Convey("Given inconsistent stored picks", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusFinal, "PHI")),
			2: weekOf(survivorGame(2, "w2", "KC", "BUF", models.GameStatusFinal, "KC")),
		}

		Convey("When the stored history already repeats a team", func() {
			entry := models.NewSurvivorEntry("u1", 2025)
			entry.PickHistory = []models.SurvivorPick{{Week: 1, Team: "PHI"}, {Week: 2, Team: "PHI"}}
			entry.LastEvaluatedWeek = 2
			out, findings := EvaluateSurvivor(entry, nil, games, now)

			Convey("Then the entry is eliminated and the problem reported", func() {
				So(out.Status, ShouldEqual, models.SurvivorEliminated)
				So(out.EliminatedWeek, ShouldEqual, 2)
				So(out.Reason, ShouldEqual, models.ReasonDuplicateTeam)
				So(len(findings), ShouldEqual, 1)
				So(findings[0].Kind, ShouldEqual, FindingDuplicateTeamInHistory)
				So(out.Flags, ShouldContain, "week 2: duplicate_team_in_history")
			})
		})

		Convey("When a week has two different picks", func() {
			picks := []models.SurvivorPick{{Week: 1, Team: "PHI"}, {Week: 1, Team: "DAL"}, {Week: 2, Team: "KC"}}
			out, findings := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)

			Convey("Then the first is used and the duplicate reported", func() {
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.PickHistory[0].Team, ShouldEqual, "PHI")
				So(len(findings), ShouldEqual, 1)
				So(findings[0].Kind, ShouldEqual, FindingDuplicateWeekPick)
			})
		})

		Convey("When a pick could not be mapped to a team", func() {
			picks := []models.SurvivorPick{{Week: 1, Team: ""}}
			out, findings := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)

			Convey("Then it counts as no pick and is reported", func() {
				So(out.Reason, ShouldEqual, models.ReasonNoPick)
				So(out.EliminatedWeek, ShouldEqual, 1)
				So(findings[0].Kind, ShouldEqual, FindingUnresolvableTeam)
			})
		})

		Convey("When the picked team has no game that week", func() {
			picks := []models.SurvivorPick{{Week: 1, Team: "SEA"}}
			out, findings := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)

			Convey("Then the entry is eliminated and reported", func() {
				So(out.Reason, ShouldEqual, models.ReasonTeamNotPlaying)
				So(out.EliminatedWeek, ShouldEqual, 1)
				So(findings[0].Kind, ShouldEqual, FindingTeamNotScheduled)
			})
		})

		Convey("When an evaluated pick is changed afterwards", func() {
			entry := models.NewSurvivorEntry("u1", 2025)
			entry.PickHistory = []models.SurvivorPick{{Week: 1, Team: "PHI"}}
			entry.LastEvaluatedWeek = 1
			picks := []models.SurvivorPick{{Week: 1, Team: "DAL"}, {Week: 2, Team: "KC"}}
			out, findings := EvaluateSurvivor(entry, picks, games, now)

			Convey("Then the recorded pick stands and the change is reported", func() {
				So(out.PickHistory[0].Team, ShouldEqual, "PHI")
				So(out.LastEvaluatedWeek, ShouldEqual, 2)
				So(findings[0].Kind, ShouldEqual, FindingPickChanged)
			})
		})
	})

	Convey("Given an eliminated entry", t, func() {
		entry := models.NewSurvivorEntry("u1", 2025)
		entry.Status = models.SurvivorEliminated
		entry.EliminatedWeek = 1
		entry.Reason = models.ReasonTeamLost
		entry.LastEvaluatedWeek = 1
		entry.PickHistory = []models.SurvivorPick{{Week: 1, Team: "DAL"}}
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusFinal, "PHI")),
			2: weekOf(survivorGame(2, "w2", "KC", "BUF", models.GameStatusFinal, "KC")),
		}
		picks := []models.SurvivorPick{{Week: 1, Team: "DAL"}, {Week: 2, Team: "KC"}}

		Convey("Then later picks never revive it", func() {
			out, findings := EvaluateSurvivor(entry, picks, games, now)
			So(out.Status, ShouldEqual, models.SurvivorEliminated)
			So(out.EliminatedWeek, ShouldEqual, 1)
			So(findings, ShouldBeEmpty)
		})

		Convey("When an administrator reinstates it", func() {
			at := now.Add(time.Hour)
			out, err := ApplyOverride(entry, "commissioner", "scoring feed error", at)

			Convey("Then it is alive with an audit record", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.EliminatedWeek, ShouldEqual, 0)
				So(out.Reason, ShouldEqual, models.EliminationReason(""))
				So(len(out.Overrides), ShouldEqual, 1)
				So(out.Overrides[0].ID, ShouldNotBeEmpty)
				So(out.Overrides[0].ClearedWeek, ShouldEqual, 1)
				So(out.Overrides[0].ClearedReason, ShouldEqual, models.ReasonTeamLost)
				So(out.Overrides[0].Actor, ShouldEqual, "commissioner")
			})

			Convey("Then evaluation resumes after the cleared week", func() {
				resumed, _ := EvaluateSurvivor(out, picks, games, now)
				So(resumed.Status, ShouldEqual, models.SurvivorAlive)
				So(resumed.LastEvaluatedWeek, ShouldEqual, 2)
			})

			Convey("Then a second override is refused", func() {
				_, err := ApplyOverride(out, "commissioner", "again", at)
				So(err, ShouldEqual, ErrNotEliminated)
			})
		})
	})
}

func TestOverrideOfDuplicateTeam(t *testing.T) {
	now := seasonStart.Add(60 * 24 * time.Hour)

	Convey("Given a user eliminated for picking the Eagles twice", t, func() {
		games := map[int]map[string]models.Game{
			1: weekOf(survivorGame(1, "w1", "PHI", "DAL", models.GameStatusFinal, "PHI")),
			2: weekOf(survivorGame(2, "w2", "PHI", "NYG", models.GameStatusFinal, "PHI")),
			3: weekOf(survivorGame(3, "w3", "KC", "BUF", models.GameStatusFinal, "KC")),
		}
		picks := []models.SurvivorPick{{Week: 1, Team: "PHI"}, {Week: 2, Team: "PHI"}, {Week: 3, Team: "KC"}}

		eliminated, _ := EvaluateSurvivor(models.NewSurvivorEntry("u1", 2025), picks, games, now)
		So(eliminated.Reason, ShouldEqual, models.ReasonDuplicateTeam)
		So(eliminated.EliminatedWeek, ShouldEqual, 2)

		Convey("When the elimination is overridden", func() {
			reinstated, err := ApplyOverride(eliminated, "commissioner", "allowed", now)
			So(err, ShouldBeNil)

			Convey("Then the repeated pick in the cleared week is not judged again", func() {
				out, findings := EvaluateSurvivor(reinstated, picks, games, now)
				So(out.Status, ShouldEqual, models.SurvivorAlive)
				So(out.LastEvaluatedWeek, ShouldEqual, 3)
				So(findings, ShouldBeEmpty)
			})

			Convey("Then a third use of the same team still eliminates", func() {
				games[4] = weekOf(survivorGame(4, "w4", "PHI", "WSH", models.GameStatusFinal, "PHI"))
				again := append(append([]models.SurvivorPick{}, picks...), models.SurvivorPick{Week: 4, Team: "PHI"})
				out, _ := EvaluateSurvivor(reinstated, again, games, now)
				So(out.Status, ShouldEqual, models.SurvivorEliminated)
				So(out.Reason, ShouldEqual, models.ReasonDuplicateTeam)
				So(out.EliminatedWeek, ShouldEqual, 4)
			})
		})
	})
}
