package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"nerdfootball/config"
	"nerdfootball/database"
	"nerdfootball/logging"
	"nerdfootball/services"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprint(w, `import_legacy [flags]

Copy games, confidence picks and survivor picks from the legacy Firestore
project (FIRESTORE_PROJECT_ID) into MongoDB.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		season = flag.Int("season", 0, "season to stamp on imported records (default: CURRENT_SEASON)")
		weeks  = flag.String("weeks", "", "comma separated weeks to import (default: every week with games)")
		dryRun = flag.Bool("dry-run", false, "read and count everything without writing to MongoDB")
	)
	flag.Usage = usage
	flag.Parse()

	weekList, err := parseWeeks(*weeks)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	if cfg.Firestore.ProjectID == "" {
		logging.Fatalf("FIRESTORE_PROJECT_ID is required for the legacy import")
	}
	if *season == 0 {
		*season = cfg.App.CurrentSeason
	}

	logging.Info("=== NerdFootball Legacy Data Import ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	legacy, err := database.NewFirestoreLegacySource(ctx, cfg.Firestore.ProjectID, cfg.ToFirestorePaths())
	if err != nil {
		logging.Fatalf("Failed to open legacy store: %v", err)
	}
	defer legacy.Close()

	db, err := database.NewMongoConnection(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	importer := services.NewLegacyImportService(
		legacy,
		database.NewMongoGameRepository(db),
		database.NewMongoWeeklyPicksRepository(db),
		database.NewMongoSurvivorPicksRepository(db),
	)

	summary, err := importer.Import(ctx, *season, weekList, *dryRun)
	if err != nil {
		logging.Errorf("Import failed: %v", err)
		os.Exit(1)
	}

	logging.Infof("Season %d weeks %v: %d games, %d picks from %d users, %d survivor picks from %d users (dry run: %t)",
		summary.Season, summary.Weeks, summary.Games, summary.Picks, summary.PickUsers,
		summary.SurvivorPicks, summary.SurvivorUsers, summary.DryRun)
	logging.Info("=== IMPORT COMPLETE ===")
}

func parseWeeks(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var weeks []int
	for _, part := range strings.Split(raw, ",") {
		week, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || week < 1 {
			return nil, fmt.Errorf("invalid week %q", part)
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}
