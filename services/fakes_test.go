package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"nerdfootball/models"
)

var errStoreDown = errors.New("connection refused")

// memoryStore is an in-memory implementation of every store the coordinator uses
type memoryStore struct {
	mu sync.Mutex

	games         []models.Game
	picks         models.WeekPicks
	survivorPicks map[string][]models.SurvivorPick

	weekly    map[string]models.WeeklyScoreRecord
	standings map[string]models.SeasonStanding
	survivor  map[string]models.SurvivorEntry

	failReads      bool
	failWritesFor  map[string]bool
	weeklyWrites   int
	survivorWrites int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		picks:         models.WeekPicks{},
		survivorPicks: make(map[string][]models.SurvivorPick),
		weekly:        make(map[string]models.WeeklyScoreRecord),
		standings:     make(map[string]models.SeasonStanding),
		survivor:      make(map[string]models.SurvivorEntry),
		failWritesFor: make(map[string]bool),
	}
}

func (m *memoryStore) stores() Stores {
	return Stores{
		Games:           m,
		ConfidencePicks: m,
		SurvivorPicks:   m,
		WeeklyScores:    m,
		Standings:       m,
		Survivor:        m,
	}
}

func weeklyKey(userID string, week int) string {
	return fmt.Sprintf("%s/%d", userID, week)
}

func (m *memoryStore) GetWeekGames(ctx context.Context, season, week int) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	var out []models.Game
	for _, g := range m.games {
		if g.Season == season && g.Week == week {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memoryStore) GetSeasonGames(ctx context.Context, season int) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	var out []models.Game
	for _, g := range m.games {
		if g.Season == season {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memoryStore) GetWeekPicks(ctx context.Context, season, week int) (models.WeekPicks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := models.WeekPicks{}
	for _, userPicks := range m.picks {
		for _, p := range userPicks {
			if p.Season == season && p.Week == week {
				out.Add(p)
			}
		}
	}
	return out, nil
}

func (m *memoryStore) ListSurvivorUsers(ctx context.Context, season int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	users := make([]string, 0, len(m.survivorPicks))
	for userID := range m.survivorPicks {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

func (m *memoryStore) GetSurvivorPickHistory(ctx context.Context, season int, userID string) ([]models.SurvivorPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	return append([]models.SurvivorPick{}, m.survivorPicks[userID]...), nil
}

func (m *memoryStore) PutWeeklyScore(ctx context.Context, record models.WeeklyScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWritesFor[record.UserID] {
		return errStoreDown
	}
	m.weeklyWrites++
	m.weekly[weeklyKey(record.UserID, record.Week)] = record
	return nil
}

func (m *memoryStore) DeleteWeeklyScore(ctx context.Context, season, week int, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWritesFor[userID] {
		return errStoreDown
	}
	delete(m.weekly, weeklyKey(userID, week))
	return nil
}

func (m *memoryStore) GetWeekScores(ctx context.Context, season, week int) ([]models.WeeklyScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	var out []models.WeeklyScoreRecord
	for _, r := range m.weekly {
		if r.Season == season && r.Week == week {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) GetSeasonWeeklyScores(ctx context.Context, season int) ([]models.WeeklyScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	var out []models.WeeklyScoreRecord
	for _, r := range m.weekly {
		if r.Season == season {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) PutSeasonStanding(ctx context.Context, standing models.SeasonStanding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWritesFor[standing.UserID] {
		return errStoreDown
	}
	m.standings[standing.UserID] = standing
	return nil
}

func (m *memoryStore) DeleteSeasonStanding(ctx context.Context, season int, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWritesFor[userID] {
		return errStoreDown
	}
	delete(m.standings, userID)
	return nil
}

func (m *memoryStore) GetSeasonStandings(ctx context.Context, season int) ([]models.SeasonStanding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := make([]models.SeasonStanding, 0, len(m.standings))
	for _, s := range m.standings {
		if s.Season == season {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (m *memoryStore) PutSurvivorStatus(ctx context.Context, entry models.SurvivorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWritesFor[entry.UserID] {
		return errStoreDown
	}
	m.survivorWrites++
	m.survivor[entry.UserID] = entry.Clone()
	return nil
}

func (m *memoryStore) GetSurvivorStatus(ctx context.Context, season int, userID string) (*models.SurvivorEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	entry, ok := m.survivor[userID]
	if !ok || entry.Season != season {
		return nil, nil
	}
	clone := entry.Clone()
	return &clone, nil
}

func (m *memoryStore) GetSeasonSurvivorStatuses(ctx context.Context, season int) ([]models.SurvivorEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	var out []models.SurvivorEntry
	for _, entry := range m.survivor {
		if entry.Season == season {
			out = append(out, entry.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// recordingInvalidator remembers every invalidated key
type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingInvalidator) Invalidate(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

func (r *recordingInvalidator) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.keys...)
}
