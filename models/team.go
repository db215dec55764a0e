package models

import (
	"sort"
	"strings"
)

// Team represents an NFL franchise under its canonical abbreviation
type Team struct {
	Abbr     string `json:"abbr"`
	City     string `json:"city"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

// FullName returns "City Name", e.g. "Philadelphia Eagles"
func (t Team) FullName() string {
	return t.City + " " + t.Name
}

var teams = []Team{
	{Abbr: "BUF", City: "Buffalo", Name: "Bills", Division: "AFC East"},
	{Abbr: "MIA", City: "Miami", Name: "Dolphins", Division: "AFC East"},
	{Abbr: "NE", City: "New England", Name: "Patriots", Division: "AFC East"},
	{Abbr: "NYJ", City: "New York", Name: "Jets", Division: "AFC East"},

	{Abbr: "BAL", City: "Baltimore", Name: "Ravens", Division: "AFC North"},
	{Abbr: "CIN", City: "Cincinnati", Name: "Bengals", Division: "AFC North"},
	{Abbr: "CLE", City: "Cleveland", Name: "Browns", Division: "AFC North"},
	{Abbr: "PIT", City: "Pittsburgh", Name: "Steelers", Division: "AFC North"},

	{Abbr: "HOU", City: "Houston", Name: "Texans", Division: "AFC South"},
	{Abbr: "IND", City: "Indianapolis", Name: "Colts", Division: "AFC South"},
	{Abbr: "JAX", City: "Jacksonville", Name: "Jaguars", Division: "AFC South"},
	{Abbr: "TEN", City: "Tennessee", Name: "Titans", Division: "AFC South"},

	{Abbr: "DEN", City: "Denver", Name: "Broncos", Division: "AFC West"},
	{Abbr: "KC", City: "Kansas City", Name: "Chiefs", Division: "AFC West"},
	{Abbr: "LV", City: "Las Vegas", Name: "Raiders", Division: "AFC West"},
	{Abbr: "LAC", City: "Los Angeles", Name: "Chargers", Division: "AFC West"},

	{Abbr: "DAL", City: "Dallas", Name: "Cowboys", Division: "NFC East"},
	{Abbr: "NYG", City: "New York", Name: "Giants", Division: "NFC East"},
	{Abbr: "PHI", City: "Philadelphia", Name: "Eagles", Division: "NFC East"},
	{Abbr: "WSH", City: "Washington", Name: "Commanders", Division: "NFC East"},

	{Abbr: "CHI", City: "Chicago", Name: "Bears", Division: "NFC North"},
	{Abbr: "DET", City: "Detroit", Name: "Lions", Division: "NFC North"},
	{Abbr: "GB", City: "Green Bay", Name: "Packers", Division: "NFC North"},
	{Abbr: "MIN", City: "Minnesota", Name: "Vikings", Division: "NFC North"},

	{Abbr: "ATL", City: "Atlanta", Name: "Falcons", Division: "NFC South"},
	{Abbr: "CAR", City: "Carolina", Name: "Panthers", Division: "NFC South"},
	{Abbr: "NO", City: "New Orleans", Name: "Saints", Division: "NFC South"},
	{Abbr: "TB", City: "Tampa Bay", Name: "Buccaneers", Division: "NFC South"},

	{Abbr: "ARI", City: "Arizona", Name: "Cardinals", Division: "NFC West"},
	{Abbr: "LAR", City: "Los Angeles", Name: "Rams", Division: "NFC West"},
	{Abbr: "SF", City: "San Francisco", Name: "49ers", Division: "NFC West"},
	{Abbr: "SEA", City: "Seattle", Name: "Seahawks", Division: "NFC West"},
}

// Alternate codes and retired names seen in older pick documents
var teamAliases = map[string]string{
	"was":                      "WSH",
	"wft":                      "WSH",
	"washington":               "WSH",
	"washington football team": "WSH",
	"washington redskins":      "WSH",
	"redskins":                 "WSH",
	"football team":            "WSH",
	"jac":                      "JAX",
	"la":                       "LAR",
	"stl":                      "LAR",
	"st louis rams":            "LAR",
	"sd":                       "LAC",
	"san diego chargers":       "LAC",
	"oak":                      "LV",
	"lvr":                      "LV",
	"oakland raiders":          "LV",
	"gnb":                      "GB",
	"kan":                      "KC",
	"nwe":                      "NE",
	"nor":                      "NO",
	"sfo":                      "SF",
	"tam":                      "TB",
	"arz":                      "ARI",
	"hst":                      "HOU",
	"blt":                      "BAL",
	"clv":                      "CLE",
}

var teamLookup = buildTeamLookup()

func buildTeamLookup() map[string]string {
	lookup := make(map[string]string, len(teams)*3+len(teamAliases))
	for _, t := range teams {
		lookup[teamKey(t.Abbr)] = t.Abbr
		lookup[teamKey(t.Name)] = t.Abbr
		lookup[teamKey(t.FullName())] = t.Abbr
	}
	for alias, abbr := range teamAliases {
		lookup[teamKey(alias)] = abbr
	}
	return lookup
}

func teamKey(raw string) string {
	cleaned := strings.ToLower(strings.ReplaceAll(raw, ".", ""))
	return strings.Join(strings.Fields(cleaned), " ")
}

// CanonicalTeam converts any known spelling of a team (abbreviation, nickname,
// full name, retired code) to its canonical abbreviation.
func CanonicalTeam(raw string) (string, bool) {
	key := teamKey(raw)
	if key == "" {
		return "", false
	}
	abbr, ok := teamLookup[key]
	return abbr, ok
}

// LookupTeam returns the team for a canonical abbreviation
func LookupTeam(abbr string) (Team, bool) {
	for _, t := range teams {
		if t.Abbr == abbr {
			return t, true
		}
	}
	return Team{}, false
}

// AllTeams returns the league sorted by abbreviation
func AllTeams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	sort.Slice(out, func(i, j int) bool { return out[i].Abbr < out[j].Abbr })
	return out
}
