package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nerdfootball/database"
	"nerdfootball/logging"
	"nerdfootball/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type weekKey struct {
	season int
	week   int
}

type pendingRecompute struct {
	timer    *time.Timer
	survivor bool
}

// GameWatcher follows result changes on the games collection and recomputes
// the affected week once updates settle. A week that saw a game go final also
// triggers a survivor run.
type GameWatcher struct {
	collection *mongo.Collection
	recomputer Recomputer
	debounce   time.Duration
	logger     *logging.Logger

	mu      sync.Mutex
	ctx     context.Context
	pending map[weekKey]*pendingRecompute
}

// NewGameWatcher creates a watcher; collection may be nil when only
// HandleGameChange is used.
func NewGameWatcher(collection *mongo.Collection, recomputer Recomputer, debounce time.Duration) *GameWatcher {
	return &GameWatcher{
		collection: collection,
		recomputer: recomputer,
		debounce:   debounce,
		logger:     logging.WithPrefix("GameWatcher"),
		ctx:        context.Background(),
		pending:    make(map[weekKey]*pendingRecompute),
	}
}

// Start watches the games collection until ctx is cancelled, reconnecting
// after stream errors.
func (w *GameWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	go w.watch(ctx)
}

func (w *GameWatcher) watch(ctx context.Context) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": []bson.M{
				{"operationType": bson.M{"$in": []string{"insert", "replace"}}},
				{
					"operationType": "update",
					"$or": []bson.M{
						{"updateDescription.updatedFields.status": bson.M{"$exists": true}},
						{"updateDescription.updatedFields.home_score": bson.M{"$exists": true}},
						{"updateDescription.updatedFields.away_score": bson.M{"$exists": true}},
						{"updateDescription.updatedFields.winner": bson.M{"$exists": true}},
					},
				},
			},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	w.logger.Infof("Watching %s for result changes", database.GamesCollection)
	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := w.collection.Watch(ctx, pipeline, opts)
		if err != nil {
			w.logger.Errorf("Error creating change stream: %v", err)
			if !sleepContext(ctx, 5*time.Second) {
				return
			}
			continue
		}

		for stream.Next(ctx) {
			var event struct {
				OperationType string `bson:"operationType"`
				FullDocument  bson.M `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				w.logger.Warnf("Error decoding change event: %v", err)
				continue
			}
			if event.FullDocument == nil {
				continue
			}

			game, _, err := database.NormalizeGame(event.FullDocument, "", 0, 0)
			if err != nil {
				w.logger.Warnf("Ignoring %s event: %v", event.OperationType, err)
				continue
			}
			w.HandleGameChange(game)
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			w.logger.Errorf("Change stream error: %v", err)
		}
		stream.Close(context.Background())

		if !sleepContext(ctx, 5*time.Second) {
			return
		}
	}
}

// HandleGameChange schedules a debounced recompute of the game's week
func (w *GameWatcher) HandleGameChange(game models.Game) {
	if game.Season <= 0 || game.Week <= 0 {
		return
	}

	key := weekKey{season: game.Season, week: game.Week}
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[key]
	if !ok {
		p = &pendingRecompute{}
		w.pending[key] = p
		p.timer = time.AfterFunc(w.debounce, func() { w.fire(key) })
	} else {
		p.timer.Reset(w.debounce)
	}
	if game.IsFinal() {
		p.survivor = true
	}
	w.logger.Debugf("Game %s (%s) %s, week %s recompute in %v",
		game.ID, game.Matchup(), game.Status, key, w.debounce)
}

// Pending returns the number of weeks waiting for their debounce to expire
func (w *GameWatcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *GameWatcher) fire(key weekKey) {
	w.mu.Lock()
	p, ok := w.pending[key]
	delete(w.pending, key)
	ctx := w.ctx
	w.mu.Unlock()

	if !ok || ctx.Err() != nil {
		return
	}

	if _, err := w.recomputer.RecomputeWeek(ctx, key.season, key.week); err != nil {
		w.logger.Errorf("Recompute of season %d week %d failed: %v", key.season, key.week, err)
	}
	if p.survivor {
		if _, err := w.recomputer.RecomputeSurvivor(ctx, key.season); err != nil {
			w.logger.Errorf("Survivor recompute of season %d failed: %v", key.season, err)
		}
	}
}

// Stop cancels every pending recompute
func (w *GameWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for key, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, key)
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (k weekKey) String() string {
	return fmt.Sprintf("%d/%d", k.season, k.week)
}
