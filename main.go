package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nerdfootball/config"
	"nerdfootball/database"
	"nerdfootball/handlers"
	"nerdfootball/logging"
	"nerdfootball/services"

	_ "time/tzdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoConnection(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	gameRepo := database.NewMongoGameRepository(db)
	stores := services.Stores{
		Games:           gameRepo,
		ConfidencePicks: database.NewMongoWeeklyPicksRepository(db),
		SurvivorPicks:   database.NewMongoSurvivorPicksRepository(db),
		WeeklyScores:    database.NewMongoWeeklyScoreRepository(db),
		Standings:       database.NewMongoSeasonStandingRepository(db),
		Survivor:        database.NewMongoSurvivorStatusRepository(db),
	}

	if cfg.UsesFirestore() {
		legacy, err := database.NewFirestoreLegacySource(ctx, cfg.Firestore.ProjectID, cfg.ToFirestorePaths())
		if err != nil {
			logging.Fatalf("Failed to open legacy store: %v", err)
		}
		defer legacy.Close()

		logging.Infof("Reading games and picks from Firestore project %s", cfg.Firestore.ProjectID)
		stores.Games = legacy
		stores.ConfidencePicks = legacy
		stores.SurvivorPicks = legacy
	}

	cache := services.NewMemoryStandingsCache(cfg.Cache.TTL)
	coordinator := services.NewCoordinator(stores, cfg.ToCoordinatorConfig(), services.WithInvalidator(cache))
	standings := services.NewStandingsService(stores.WeeklyScores, stores.Survivor, cache)

	if cfg.Scheduler.Enabled {
		updater := services.NewBackgroundUpdater(stores.Games, coordinator, cfg.ToSchedulerConfig())
		if err := updater.Start(); err != nil {
			logging.Fatalf("Failed to start scheduler: %v", err)
		}
		defer updater.Stop()
	}

	if cfg.Scheduler.WatchGames && !cfg.UsesFirestore() {
		watcher := services.NewGameWatcher(db.GetCollection(database.GamesCollection), coordinator, cfg.Scheduler.WatchDebounce)
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	router := handlers.NewRouter(
		handlers.NewRecomputeHandler(coordinator),
		handlers.NewStandingsHandler(standings),
		db,
	)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Graceful shutdown failed: %v", err)
	}
}
