package services

import (
	"fmt"
	"sort"
	"time"

	"nerdfootball/models"

	"github.com/google/uuid"
)

// Kinds of inconsistent survivor history reported by EvaluateSurvivor
const (
	FindingDuplicateTeamInHistory = "duplicate_team_in_history"
	FindingDuplicateWeekPick      = "duplicate_week_pick"
	FindingUnresolvableTeam       = "unresolvable_team"
	FindingTeamNotScheduled       = "team_not_scheduled"
	FindingPickChanged            = "pick_changed_after_evaluation"
)

// SurvivorFinding describes an inconsistency found while evaluating an entry.
// Findings never block evaluation; they are surfaced for operator review.
type SurvivorFinding struct {
	UserID string `json:"userId"`
	Week   int    `json:"week"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (f SurvivorFinding) String() string {
	return fmt.Sprintf("user %s week %d %s: %s", f.UserID, f.Week, f.Kind, f.Detail)
}

// EvaluateSurvivor advances an entry week by week from its first unevaluated week.
// games is keyed by week then game id. Evaluation stops at the first week that
// cannot be decided yet (no games loaded, game not final, deadline not passed)
// and resumes there on the next call. An eliminated entry is returned unchanged.
func EvaluateSurvivor(entry models.SurvivorEntry, picks []models.SurvivorPick, games map[int]map[string]models.Game, now time.Time) (models.SurvivorEntry, []SurvivorFinding) {
	out := entry.Clone()
	if out.Status == "" {
		out.Status = models.SurvivorAlive
	}
	if out.PickHistory == nil {
		out.PickHistory = []models.SurvivorPick{}
	}
	if out.IsEliminated() {
		return out, nil
	}

	var findings []SurvivorFinding
	flag := func(week int, kind, detail string) {
		findings = append(findings, SurvivorFinding{UserID: out.UserID, Week: week, Kind: kind, Detail: detail})
		out.Flags = appendUnique(out.Flags, fmt.Sprintf("week %d: %s", week, kind))
	}
	eliminate := func(week int, reason models.EliminationReason) {
		out.Status = models.SurvivorEliminated
		out.EliminatedWeek = week
		out.Reason = reason
		if week > out.LastEvaluatedWeek {
			out.LastEvaluatedWeek = week
		}
	}

	// A team repeated inside the stored history means an earlier run or an
	// upstream writer let a duplicate through; elimination wins.
	// Weeks whose elimination an override cleared are not judged again.
	pardoned := make(map[int]bool, len(out.Overrides))
	for _, o := range out.Overrides {
		pardoned[o.ClearedWeek] = true
	}
	seen := make(map[string]int, len(out.PickHistory))
	for _, p := range out.PickHistory {
		if first, dup := seen[p.Team]; dup && !pardoned[p.Week] {
			flag(p.Week, FindingDuplicateTeamInHistory, fmt.Sprintf("%s already used in week %d", p.Team, first))
			eliminate(p.Week, models.ReasonDuplicateTeam)
			return out, findings
		}
		seen[p.Team] = p.Week
	}

	byWeek := make(map[int]models.SurvivorPick, len(picks))
	for _, p := range picks {
		if p.Week <= 0 {
			continue
		}
		if prior, dup := byWeek[p.Week]; dup {
			if prior.Team != p.Team {
				flag(p.Week, FindingDuplicateWeekPick, fmt.Sprintf("picks %q and %q, keeping %q", prior.Team, p.Team, prior.Team))
			}
			continue
		}
		byWeek[p.Week] = p
	}

	for _, h := range out.PickHistory {
		if p, ok := byWeek[h.Week]; ok && p.Team != h.Team {
			flag(h.Week, FindingPickChanged, fmt.Sprintf("evaluated %s, store now says %q", h.Team, p.Team))
		}
	}

	used := out.UsedTeams()
	record := func(p models.SurvivorPick) {
		out.PickHistory = append(out.PickHistory, models.SurvivorPick{Week: p.Week, Team: p.Team})
		if _, ok := used[p.Team]; !ok {
			used[p.Team] = p.Week
		}
	}

	for week := out.LastEvaluatedWeek + 1; ; week++ {
		weekGames := games[week]
		if len(weekGames) == 0 {
			break
		}
		deadlinePassed := weekDeadlinePassed(weekGames, now)
		settled := deadlinePassed && allFinal(weekGames)

		pick, hasPick := byWeek[week]
		if hasPick && pick.Team == "" {
			flag(week, FindingUnresolvableTeam, "stored pick could not be mapped to a team")
			hasPick = false
		}

		if !hasPick {
			if settled {
				eliminate(week, models.ReasonNoPick)
			}
			break
		}
		if !deadlinePassed {
			break
		}

		if _, dup := used[pick.Team]; dup {
			record(pick)
			eliminate(week, models.ReasonDuplicateTeam)
			break
		}

		game, found := gameForTeam(weekGames, pick.Team)
		if !found {
			if settled {
				flag(week, FindingTeamNotScheduled, fmt.Sprintf("%s has no game this week", pick.Team))
				record(pick)
				eliminate(week, models.ReasonTeamNotPlaying)
			}
			break
		}
		if !game.IsFinal() {
			break
		}

		record(pick)
		if game.Winner != "" && game.Winner != pick.Team {
			eliminate(week, models.ReasonTeamLost)
			break
		}
		out.LastEvaluatedWeek = week
	}

	return out, findings
}

// ApplyOverride reinstates an eliminated entry and appends an audit record.
// It is the only way an elimination is ever cleared. The cleared week stays
// evaluated so ordinary recomputation resumes at the following week.
func ApplyOverride(entry models.SurvivorEntry, actor, note string, now time.Time) (models.SurvivorEntry, error) {
	if !entry.IsEliminated() {
		return entry, ErrNotEliminated
	}

	out := entry.Clone()
	out.Overrides = append(out.Overrides, models.SurvivorOverride{
		ID:            uuid.NewString(),
		Actor:         actor,
		Note:          note,
		ClearedWeek:   entry.EliminatedWeek,
		ClearedReason: entry.Reason,
		At:            now.UTC(),
	})
	out.Status = models.SurvivorAlive
	out.EliminatedWeek = 0
	out.Reason = ""
	return out, nil
}

func weekDeadlinePassed(weekGames map[string]models.Game, now time.Time) bool {
	for _, g := range weekGames {
		if g.Status != models.GameStatusScheduled {
			return true
		}
		if !g.Kickoff.IsZero() && !now.Before(g.Kickoff) {
			return true
		}
	}
	return false
}

func allFinal(weekGames map[string]models.Game) bool {
	for _, g := range weekGames {
		if !g.IsFinal() {
			return false
		}
	}
	return true
}

func gameForTeam(weekGames map[string]models.Game, team string) (models.Game, bool) {
	ids := make([]string, 0, len(weekGames))
	for id := range weekGames {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if g := weekGames[id]; g.HasTeam(team) {
			return g, true
		}
	}
	return models.Game{}, false
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
