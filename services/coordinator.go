package services

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"nerdfootball/logging"
	"nerdfootball/metrics"
	"nerdfootball/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Run kinds reported in RunSummary and metrics
const (
	RunKindWeek      = "week"
	RunKindSurvivor  = "survivor"
	RunKindReinstate = "reinstate"
)

const (
	minSeason = 1920
	maxSeason = 2100
)

// RunSummary reports what one recompute did
type RunSummary struct {
	RunID           string            `json:"runId"`
	Kind            string            `json:"kind"`
	Season          int               `json:"season"`
	Week            int               `json:"week,omitempty"`
	StartedAt       time.Time         `json:"startedAt"`
	Duration        time.Duration     `json:"duration"`
	UsersProcessed  int               `json:"usersProcessed"`
	UsersFailed     []string          `json:"usersFailed,omitempty"`
	UsersRemoved    []string          `json:"usersRemoved,omitempty"`
	Discarded       int               `json:"discarded"`
	Pending         int               `json:"pending"`
	MissingGames    []string          `json:"missingGames,omitempty"`
	ConfidenceFlags int               `json:"confidenceFlags,omitempty"`
	Eliminated      int               `json:"eliminated,omitempty"`
	Inconsistencies []SurvivorFinding `json:"inconsistencies,omitempty"`
}

// Failed returns true if any user could not be written
func (s RunSummary) Failed() bool {
	return len(s.UsersFailed) > 0
}

// CoordinatorConfig bounds a Coordinator
type CoordinatorConfig struct {
	MaxWeek          int
	Concurrency      int
	MissingGameGrace time.Duration
}

// CoordinatorOption customizes a Coordinator
type CoordinatorOption func(*Coordinator)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithInvalidator registers the cache dropped after every write
func WithInvalidator(invalidator CacheInvalidator) CoordinatorOption {
	return func(c *Coordinator) {
		c.invalidator = invalidator
	}
}

// Coordinator runs the pure engines against the stores. Every write is a
// full replacement keyed by user, so any run can be repeated or resumed.
type Coordinator struct {
	stores      Stores
	config      CoordinatorConfig
	now         func() time.Time
	invalidator CacheInvalidator
	logger      *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator creates a coordinator over the given stores
func NewCoordinator(stores Stores, config CoordinatorConfig, opts ...CoordinatorOption) *Coordinator {
	if config.MaxWeek <= 0 {
		config.MaxWeek = 18
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	c := &Coordinator{
		stores: stores,
		config: config,
		now:    time.Now,
		logger: logging.WithPrefix("Coordinator"),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxWeek returns the last valid week number
func (c *Coordinator) MaxWeek() int {
	return c.config.MaxWeek
}

// ValidateSeason rejects seasons outside the supported range
func ValidateSeason(season int) error {
	if season < minSeason || season > maxSeason {
		return fmt.Errorf("%w: %d", ErrInvalidSeason, season)
	}
	return nil
}

// ValidateWeek rejects weeks outside 1..MaxWeek
func (c *Coordinator) ValidateWeek(week int) error {
	if week < 1 || week > c.config.MaxWeek {
		return fmt.Errorf("%w: %d (expected 1-%d)", ErrInvalidWeek, week, c.config.MaxWeek)
	}
	return nil
}

// RecomputeWeek scores one week for every user, rewrites their weekly records,
// then rebuilds the season standings from everything stored for the season.
func (c *Coordinator) RecomputeWeek(ctx context.Context, season, week int) (summary RunSummary, err error) {
	if err := ValidateSeason(season); err != nil {
		return RunSummary{}, err
	}
	if err := c.ValidateWeek(week); err != nil {
		return RunSummary{}, err
	}

	unlock := c.lock(fmt.Sprintf("season:%d", season))
	defer unlock()

	summary = c.newSummary(RunKindWeek, season, week)
	defer func() { c.finish(&summary, err) }()

	gameList, err := c.stores.Games.GetWeekGames(ctx, season, week)
	if err != nil {
		return summary, storeError("get_week_games", err)
	}
	games := c.indexGames(gameList)

	picks, err := c.stores.ConfidencePicks.GetWeekPicks(ctx, season, week)
	if err != nil {
		return summary, storeError("get_week_picks", err)
	}

	records := ScoreWeek(season, week, games, picks)
	missing := make(map[string]struct{})
	for _, record := range records {
		diag := record.Diagnostics
		summary.Discarded += diag.Discarded
		summary.Pending += diag.Pending
		for _, id := range diag.MissingGames {
			missing[id] = struct{}{}
		}
		if diag.HasFlags() {
			summary.ConfidenceFlags++
			metrics.RecordConfidenceFlag()
			c.logger.Warnf("User %s week %d: duplicate confidence %v, out of range %v",
				record.UserID, week, diag.DuplicateConfidence, diag.OutOfRangeConfidence)
		}
	}
	for id := range missing {
		summary.MissingGames = append(summary.MissingGames, id)
	}
	sort.Strings(summary.MissingGames)
	metrics.RecordPicksDiscarded(summary.Discarded)
	metrics.RecordPicksPending(summary.Pending)
	c.checkMissingGames(season, week, gameList, summary.MissingGames)

	existing, err := c.stores.WeeklyScores.GetWeekScores(ctx, season, week)
	if err != nil {
		return summary, storeError("get_week_scores", err)
	}
	for _, record := range existing {
		if _, ok := records[record.UserID]; !ok {
			summary.UsersRemoved = append(summary.UsersRemoved, record.UserID)
		}
	}
	sort.Strings(summary.UsersRemoved)

	userIDs := make([]string, 0, len(records)+len(summary.UsersRemoved))
	for userID := range records {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	userIDs = append(userIDs, summary.UsersRemoved...)

	failures := c.forEachUser(ctx, userIDs, func(ctx context.Context, userID string) error {
		record, ok := records[userID]
		if !ok {
			// picks were removed since the last run
			if err := c.stores.WeeklyScores.DeleteWeeklyScore(ctx, season, week, userID); err != nil {
				metrics.RecordStoreFailure("delete_weekly_score")
				return err
			}
			return nil
		}
		if err := c.stores.WeeklyScores.PutWeeklyScore(ctx, record); err != nil {
			metrics.RecordStoreFailure("put_weekly_score")
			return err
		}
		metrics.RecordWeeklyScoreWritten()
		return nil
	})
	summary.UsersProcessed = len(userIDs) - len(failures)

	standingFailures, err := c.refreshStandings(ctx, season)
	c.invalidate(WeekScoresKey(season, week), StandingsKey(season))
	failures = mergeFailures(failures, standingFailures)
	summary.UsersFailed = failedUsers(failures)
	if err != nil {
		return summary, err
	}
	if len(failures) > 0 {
		return summary, fmt.Errorf("%w: %d users not written: %v", ErrStoreUnavailable, len(failures), firstFailure(failures))
	}
	return summary, nil
}

// RefreshStandings rebuilds the season leaderboard from stored weekly records
func (c *Coordinator) RefreshStandings(ctx context.Context, season int) ([]models.SeasonStanding, error) {
	if err := ValidateSeason(season); err != nil {
		return nil, err
	}

	unlock := c.lock(fmt.Sprintf("season:%d", season))
	defer unlock()

	failures, err := c.refreshStandings(ctx, season)
	c.invalidate(StandingsKey(season))
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		return nil, fmt.Errorf("%w: %d standings not written: %v", ErrStoreUnavailable, len(failures), firstFailure(failures))
	}
	return c.stores.Standings.GetSeasonStandings(ctx, season)
}

func (c *Coordinator) refreshStandings(ctx context.Context, season int) (map[string]error, error) {
	stored, err := c.stores.WeeklyScores.GetSeasonWeeklyScores(ctx, season)
	if err != nil {
		return nil, storeError("get_season_weekly_scores", err)
	}

	previous, err := c.stores.Standings.GetSeasonStandings(ctx, season)
	if err != nil {
		return nil, storeError("get_season_standings", err)
	}

	standings := AggregateSeason(GroupRecordsByUser(stored))
	byUser := make(map[string]models.SeasonStanding, len(standings))
	userIDs := make([]string, 0, len(standings))
	for _, standing := range standings {
		standing.Season = season
		byUser[standing.UserID] = standing
		userIDs = append(userIDs, standing.UserID)
	}
	for _, standing := range previous {
		if _, ok := byUser[standing.UserID]; !ok {
			userIDs = append(userIDs, standing.UserID)
		}
	}

	failures := c.forEachUser(ctx, userIDs, func(ctx context.Context, userID string) error {
		standing, ok := byUser[userID]
		if !ok {
			if err := c.stores.Standings.DeleteSeasonStanding(ctx, season, userID); err != nil {
				metrics.RecordStoreFailure("delete_season_standing")
				return err
			}
			return nil
		}
		if err := c.stores.Standings.PutSeasonStanding(ctx, standing); err != nil {
			metrics.RecordStoreFailure("put_season_standing")
			return err
		}
		metrics.RecordStandingWritten()
		return nil
	})

	c.logger.Debugf("Season %d standings rebuilt for %d users (%d failed)", season, len(userIDs), len(failures))
	return failures, nil
}

// RecomputeSurvivor advances every survivor entry of the season as far as
// the stored results allow.
func (c *Coordinator) RecomputeSurvivor(ctx context.Context, season int) (summary RunSummary, err error) {
	if err := ValidateSeason(season); err != nil {
		return RunSummary{}, err
	}

	unlock := c.lock(fmt.Sprintf("survivor:%d", season))
	defer unlock()

	summary = c.newSummary(RunKindSurvivor, season, 0)
	defer func() { c.finish(&summary, err) }()

	gameList, err := c.stores.Games.GetSeasonGames(ctx, season)
	if err != nil {
		return summary, storeError("get_season_games", err)
	}
	c.indexGames(gameList)
	games := models.GamesByWeek(gameList)

	statuses, err := c.stores.Survivor.GetSeasonSurvivorStatuses(ctx, season)
	if err != nil {
		return summary, storeError("get_survivor_statuses", err)
	}
	users, err := c.stores.SurvivorPicks.ListSurvivorUsers(ctx, season)
	if err != nil {
		return summary, storeError("list_survivor_users", err)
	}

	existing := make(map[string]models.SurvivorEntry, len(statuses))
	for _, entry := range statuses {
		existing[entry.UserID] = entry
	}
	userSet := make(map[string]struct{}, len(users)+len(statuses))
	for _, userID := range users {
		userSet[userID] = struct{}{}
	}
	for userID := range existing {
		userSet[userID] = struct{}{}
	}
	userIDs := make([]string, 0, len(userSet))
	for userID := range userSet {
		if userID != "" {
			userIDs = append(userIDs, userID)
		}
	}
	sort.Strings(userIDs)

	now := c.now()
	var mu sync.Mutex
	failures := c.forEachUser(ctx, userIDs, func(ctx context.Context, userID string) error {
		picks, err := c.stores.SurvivorPicks.GetSurvivorPickHistory(ctx, season, userID)
		if err != nil {
			metrics.RecordStoreFailure("get_survivor_picks")
			return err
		}

		before, stored := existing[userID]
		if !stored {
			before = models.NewSurvivorEntry(userID, season)
		}
		after, findings := EvaluateSurvivor(before, picks, games, now)

		for _, f := range findings {
			metrics.RecordSurvivorInconsistency(f.Kind)
			c.logger.Warnf("Survivor inconsistency: %s", f)
		}
		newlyEliminated := after.IsEliminated() && !before.IsEliminated()

		if !stored || !reflect.DeepEqual(before, after) {
			if err := c.stores.Survivor.PutSurvivorStatus(ctx, after); err != nil {
				metrics.RecordStoreFailure("put_survivor_status")
				return err
			}
		}

		if newlyEliminated {
			metrics.RecordElimination(string(after.Reason))
			c.logger.Infof("User %s eliminated in week %d: %s", userID, after.EliminatedWeek, after.Reason)
		}

		mu.Lock()
		summary.Inconsistencies = append(summary.Inconsistencies, findings...)
		if newlyEliminated {
			summary.Eliminated++
		}
		mu.Unlock()
		return nil
	})

	sort.SliceStable(summary.Inconsistencies, func(i, j int) bool {
		a, b := summary.Inconsistencies[i], summary.Inconsistencies[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Week < b.Week
	})
	summary.UsersProcessed = len(userIDs) - len(failures)
	summary.UsersFailed = failedUsers(failures)
	c.invalidate(SurvivorKey(season))

	if len(failures) > 0 {
		return summary, fmt.Errorf("%w: %d survivor entries not written: %v", ErrStoreUnavailable, len(failures), firstFailure(failures))
	}
	return summary, nil
}

// ReinstateSurvivor clears an elimination through an audited override
func (c *Coordinator) ReinstateSurvivor(ctx context.Context, season int, userID, actor, note string) (models.SurvivorEntry, error) {
	if err := ValidateSeason(season); err != nil {
		return models.SurvivorEntry{}, err
	}
	if userID == "" {
		return models.SurvivorEntry{}, fmt.Errorf("%w: empty user id", ErrEntryNotFound)
	}

	unlock := c.lock(fmt.Sprintf("survivor:%d", season))
	defer unlock()

	start := c.now()
	entry, err := c.stores.Survivor.GetSurvivorStatus(ctx, season, userID)
	if err != nil {
		return models.SurvivorEntry{}, storeError("get_survivor_status", err)
	}
	if entry == nil {
		return models.SurvivorEntry{}, fmt.Errorf("%w: %s in season %d", ErrEntryNotFound, userID, season)
	}

	reinstated, err := ApplyOverride(*entry, actor, note, start)
	if err != nil {
		return *entry, err
	}
	if err := c.stores.Survivor.PutSurvivorStatus(ctx, reinstated); err != nil {
		return *entry, storeError("put_survivor_status", err)
	}
	c.invalidate(SurvivorKey(season))

	metrics.ObserveRecompute(RunKindReinstate, false, c.now().Sub(start))
	c.logger.Infof("User %s reinstated by %s (cleared week %d %s): %s",
		userID, actor, entry.EliminatedWeek, entry.Reason, note)
	return reinstated, nil
}

// forEachUser runs fn for each user with bounded parallelism. A failing user
// never cancels the others; failures are returned by user id.
func (c *Coordinator) forEachUser(ctx context.Context, userIDs []string, fn func(context.Context, string) error) map[string]error {
	var (
		mu       sync.Mutex
		failures = make(map[string]error)
		g        errgroup.Group
	)
	g.SetLimit(c.config.Concurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := fn(ctx, userID); err != nil {
				c.logger.Errorf("User %s failed: %v", userID, err)
				mu.Lock()
				failures[userID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// indexGames validates and indexes games, logging any record that breaks the
// status/winner invariants. Invalid games are still indexed.
func (c *Coordinator) indexGames(games []models.Game) map[string]models.Game {
	indexed := make(map[string]models.Game, len(games))
	for i := range games {
		if err := games[i].Validate(); err != nil {
			c.logger.Warnf("Inconsistent game record: %v", err)
		}
		if _, dup := indexed[games[i].ID]; dup {
			c.logger.Warnf("Duplicate game id %s in season %d week %d", games[i].ID, games[i].Season, games[i].Week)
		}
		indexed[games[i].ID] = games[i]
	}
	return indexed
}

// checkMissingGames warns when picks still reference games that never showed
// up although the rest of the week is long finished.
func (c *Coordinator) checkMissingGames(season, week int, games []models.Game, missing []string) {
	if len(missing) == 0 || len(games) == 0 {
		return
	}

	var latest time.Time
	for i := range games {
		if !games[i].IsFinal() {
			return
		}
		if games[i].Kickoff.After(latest) {
			latest = games[i].Kickoff
		}
	}
	if latest.IsZero() || c.now().Sub(latest) < c.config.MissingGameGrace {
		return
	}

	metrics.RecordMissingGameWarning()
	c.logger.Warnf("Season %d week %d: picks reference games with no result %v; week finished %s ago",
		season, week, missing, c.now().Sub(latest).Round(time.Minute))
}

func (c *Coordinator) newSummary(kind string, season, week int) RunSummary {
	return RunSummary{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Season:    season,
		Week:      week,
		StartedAt: c.now(),
	}
}

func (c *Coordinator) finish(summary *RunSummary, err error) {
	summary.Duration = c.now().Sub(summary.StartedAt)
	metrics.ObserveRecompute(summary.Kind, err != nil, summary.Duration)

	logger := c.logger.WithField("run", summary.RunID)
	if err != nil {
		logger.Errorf("%s run season %d week %d failed after %v: %v",
			summary.Kind, summary.Season, summary.Week, summary.Duration, err)
		return
	}
	logger.Infof("%s run season %d week %d: %d users, %d discarded, %d pending, %d eliminated in %v",
		summary.Kind, summary.Season, summary.Week, summary.UsersProcessed,
		summary.Discarded, summary.Pending, summary.Eliminated, summary.Duration)
}

func (c *Coordinator) invalidate(keys ...string) {
	if c.invalidator != nil {
		c.invalidator.Invalidate(keys...)
	}
}

// lock serializes runs touching the same derived collection of a season
func (c *Coordinator) lock(key string) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func storeError(operation string, err error) error {
	metrics.RecordStoreFailure(operation)
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, operation, err)
}

func mergeFailures(a, b map[string]error) map[string]error {
	for userID, err := range b {
		if _, ok := a[userID]; !ok {
			a[userID] = err
		}
	}
	return a
}

func failedUsers(failures map[string]error) []string {
	if len(failures) == 0 {
		return nil
	}
	users := make([]string, 0, len(failures))
	for userID := range failures {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func firstFailure(failures map[string]error) error {
	users := failedUsers(failures)
	if len(users) == 0 {
		return nil
	}
	return failures[users[0]]
}
