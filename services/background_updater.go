package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nerdfootball/logging"
	"nerdfootball/models"

	"github.com/robfig/cron/v3"
)

// Recomputer is the part of the Coordinator the triggers drive
type Recomputer interface {
	RecomputeWeek(ctx context.Context, season, week int) (RunSummary, error)
	RecomputeSurvivor(ctx context.Context, season int) (RunSummary, error)
}

// SchedulerConfig controls the periodic triggers
type SchedulerConfig struct {
	Season       int
	ScoringSpec  string
	SurvivorSpec string
	Location     *time.Location
	ActiveWindow time.Duration
	RunTimeout   time.Duration
}

// BackgroundUpdater recomputes active weeks and survivor entries on a cron schedule
type BackgroundUpdater struct {
	games      GameReader
	recomputer Recomputer
	config     SchedulerConfig
	cron       *cron.Cron
	now        func() time.Time
	logger     *logging.Logger

	mu      sync.Mutex
	running bool
}

// NewBackgroundUpdater creates the cron trigger; call Start to schedule it
func NewBackgroundUpdater(games GameReader, recomputer Recomputer, config SchedulerConfig) *BackgroundUpdater {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 5 * time.Minute
	}

	return &BackgroundUpdater{
		games:      games,
		recomputer: recomputer,
		config:     config,
		cron:       cron.New(cron.WithLocation(config.Location)),
		now:        time.Now,
		logger:     logging.WithPrefix("BackgroundUpdater"),
	}
}

// Start registers both jobs and starts the cron scheduler
func (bu *BackgroundUpdater) Start() error {
	bu.mu.Lock()
	defer bu.mu.Unlock()

	if bu.running {
		bu.logger.Warn("Already running")
		return nil
	}

	if _, err := bu.cron.AddFunc(bu.config.ScoringSpec, bu.scoringJob); err != nil {
		return fmt.Errorf("invalid scoring schedule %q: %w", bu.config.ScoringSpec, err)
	}
	if _, err := bu.cron.AddFunc(bu.config.SurvivorSpec, bu.survivorJob); err != nil {
		return fmt.Errorf("invalid survivor schedule %q: %w", bu.config.SurvivorSpec, err)
	}

	bu.cron.Start()
	bu.running = true
	bu.logger.Infof("Scheduled scoring %q and survivor %q for season %d (%s)",
		bu.config.ScoringSpec, bu.config.SurvivorSpec, bu.config.Season, bu.config.Location)
	return nil
}

// Stop halts the scheduler and waits for running jobs to return
func (bu *BackgroundUpdater) Stop() {
	bu.mu.Lock()
	defer bu.mu.Unlock()

	if !bu.running {
		return
	}
	bu.logger.Info("Stopping...")
	<-bu.cron.Stop().Done()
	bu.running = false
}

// IsRunning reports whether the scheduler has been started
func (bu *BackgroundUpdater) IsRunning() bool {
	bu.mu.Lock()
	defer bu.mu.Unlock()
	return bu.running
}

func (bu *BackgroundUpdater) scoringJob() {
	ctx, cancel := context.WithTimeout(context.Background(), bu.config.RunTimeout)
	defer cancel()

	if _, err := bu.RecomputeActiveWeeks(ctx); err != nil {
		bu.logger.Errorf("Scheduled scoring failed: %v", err)
	}
}

func (bu *BackgroundUpdater) survivorJob() {
	ctx, cancel := context.WithTimeout(context.Background(), bu.config.RunTimeout)
	defer cancel()

	if _, err := bu.recomputer.RecomputeSurvivor(ctx, bu.config.Season); err != nil {
		bu.logger.Errorf("Scheduled survivor evaluation failed: %v", err)
	}
}

// RecomputeActiveWeeks recomputes every week with a game in progress or a
// recent kickoff. Each week is attempted even if an earlier one failed.
func (bu *BackgroundUpdater) RecomputeActiveWeeks(ctx context.Context) ([]int, error) {
	games, err := bu.games.GetSeasonGames(ctx, bu.config.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load season %d games: %w", bu.config.Season, err)
	}

	weeks := ActiveWeeks(games, bu.now(), bu.config.ActiveWindow)
	if len(weeks) == 0 {
		bu.logger.Debugf("No active weeks in season %d", bu.config.Season)
		return nil, nil
	}

	var firstErr error
	for _, week := range weeks {
		if _, err := bu.recomputer.RecomputeWeek(ctx, bu.config.Season, week); err != nil {
			bu.logger.Errorf("Week %d recompute failed: %v", week, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return weeks, firstErr
}

// RunOnce runs both jobs immediately, outside the schedule
func (bu *BackgroundUpdater) RunOnce(ctx context.Context) error {
	if _, err := bu.RecomputeActiveWeeks(ctx); err != nil {
		return err
	}
	_, err := bu.recomputer.RecomputeSurvivor(ctx, bu.config.Season)
	return err
}

// ActiveWeeks returns the sorted weeks that have a game in progress or a
// kickoff within window before now.
func ActiveWeeks(games []models.Game, now time.Time, window time.Duration) []int {
	set := make(map[int]struct{})
	for i := range games {
		g := &games[i]
		if g.Week <= 0 {
			continue
		}
		if g.IsInProgress() {
			set[g.Week] = struct{}{}
			continue
		}
		if g.Kickoff.IsZero() || g.Kickoff.After(now) {
			continue
		}
		if now.Sub(g.Kickoff) <= window {
			set[g.Week] = struct{}{}
		}
	}

	weeks := make([]int, 0, len(set))
	for week := range set {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}
