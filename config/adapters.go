package config

import (
	"os"
	"time"

	"nerdfootball/database"
	"nerdfootball/logging"
	"nerdfootball/services"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
}

// ToCoordinatorConfig converts Config to services.CoordinatorConfig
func (c *Config) ToCoordinatorConfig() services.CoordinatorConfig {
	return services.CoordinatorConfig{
		MaxWeek:          c.App.MaxWeek,
		Concurrency:      c.App.Concurrency,
		MissingGameGrace: c.App.MissingGameGrace,
	}
}

// ToSchedulerConfig converts Config to services.SchedulerConfig. An unknown
// timezone falls back to US Eastern standard time.
func (c *Config) ToSchedulerConfig() services.SchedulerConfig {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		logging.Warnf("Failed to load timezone %q, falling back to EST: %v", c.Scheduler.Timezone, err)
		loc = time.FixedZone("EST", -5*60*60)
	}

	return services.SchedulerConfig{
		Season:       c.App.CurrentSeason,
		ScoringSpec:  c.Scheduler.ScoringSpec,
		SurvivorSpec: c.Scheduler.SurvivorSpec,
		Location:     loc,
		ActiveWindow: c.Scheduler.ActiveWindow,
	}
}

// ToFirestorePaths converts Config to database.FirestorePaths
func (c *Config) ToFirestorePaths() database.FirestorePaths {
	return database.FirestorePaths{
		Games:    c.Firestore.GamesPath,
		Picks:    c.Firestore.PicksPath,
		Survivor: c.Firestore.SurvivorPath,
	}
}

// UsesFirestore reports whether games and picks come from the legacy store
func (c *Config) UsesFirestore() bool {
	return c.App.Source == SourceFirestore
}
