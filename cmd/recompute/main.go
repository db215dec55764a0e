package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nerdfootball/config"
	"nerdfootball/database"
	"nerdfootball/logging"
	"nerdfootball/services"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprint(w, `recompute [flags]

Run one recompute against the configured stores and print the run summary.

Examples:
	recompute -season 2025 -week 3
	recompute -season 2025 -survivor
	recompute -season 2025 -reinstate u123 -actor commish -note "feed error"

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		season    = flag.Int("season", 0, "season to recompute (default: CURRENT_SEASON)")
		week      = flag.Int("week", 0, "week to score and fold into the standings")
		survivor  = flag.Bool("survivor", false, "evaluate survivor entries for the season")
		reinstate = flag.String("reinstate", "", "user id of an eliminated survivor entry to reinstate")
		actor     = flag.String("actor", "", "who is performing the reinstatement")
		note      = flag.String("note", "", "reason recorded with the reinstatement")
	)
	flag.Usage = usage
	flag.Parse()

	if *week == 0 && !*survivor && *reinstate == "" {
		usage()
		os.Exit(2)
	}
	if *reinstate != "" && *actor == "" {
		fmt.Fprintln(os.Stderr, "-actor is required with -reinstate")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	if *season == 0 {
		*season = cfg.App.CurrentSeason
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoConnection(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	stores := services.Stores{
		Games:           database.NewMongoGameRepository(db),
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
		stores.Games = legacy
		stores.ConfidencePicks = legacy
		stores.SurvivorPicks = legacy
	}

	coordinator := services.NewCoordinator(stores, cfg.ToCoordinatorConfig())
	failed := false

	if *week != 0 {
		summary, err := coordinator.RecomputeWeek(ctx, *season, *week)
		failed = report(summary, err) || failed
	}
	if *survivor {
		summary, err := coordinator.RecomputeSurvivor(ctx, *season)
		failed = report(summary, err) || failed
	}
	if *reinstate != "" {
		entry, err := coordinator.ReinstateSurvivor(ctx, *season, *reinstate, *actor, *note)
		if err != nil {
			logging.Errorf("Reinstatement failed: %v", err)
			failed = true
		} else {
			printJSON(entry)
		}
	}

	if failed {
		os.Exit(1)
	}
}

// report prints a run summary and returns true if the run had failures
func report(summary services.RunSummary, err error) bool {
	printJSON(summary)
	if err != nil {
		logging.Errorf("Run %s failed: %v", summary.RunID, err)
		return true
	}
	return summary.Failed()
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.Errorf("Failed to encode output: %v", err)
	}
}
