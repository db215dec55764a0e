package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nerdfootball/logging"

	"github.com/joho/godotenv"
)

// Source selects where games and picks are read from
const (
	SourceMongo     = "mongo"
	SourceFirestore = "firestore"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
	App       AppConfig       `json:"app"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Cache     CacheConfig     `json:"cache"`
	Firestore FirestoreConfig `json:"firestore"`
}

// ServerConfig holds HTTP trigger surface configuration
type ServerConfig struct {
	Port            string        `json:"port"`
	Host            string        `json:"host"`
	Environment     string        `json:"environment"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AppConfig holds pool rules and recompute tuning
type AppConfig struct {
	CurrentSeason    int           `json:"current_season"`
	MaxWeek          int           `json:"max_week"`
	Concurrency      int           `json:"concurrency"`
	MissingGameGrace time.Duration `json:"missing_game_grace"`
	Source           string        `json:"source"`
	IsDevelopment    bool          `json:"is_development"`
}

// SchedulerConfig holds cron and change-stream trigger settings
type SchedulerConfig struct {
	Enabled       bool          `json:"enabled"`
	ScoringSpec   string        `json:"scoring_spec"`
	SurvivorSpec  string        `json:"survivor_spec"`
	Timezone      string        `json:"timezone"`
	ActiveWindow  time.Duration `json:"active_window"`
	WatchGames    bool          `json:"watch_games"`
	WatchDebounce time.Duration `json:"watch_debounce"`
}

// CacheConfig holds the derived standings cache settings
type CacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// FirestoreConfig points at the legacy hosted document store
type FirestoreConfig struct {
	ProjectID    string `json:"project_id"`
	GamesPath    string `json:"games_path"`
	PicksPath    string `json:"picks_path"`
	SurvivorPath string `json:"survivor_path"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:     environment,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "nerdfootball"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", ""),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		App: AppConfig{
			CurrentSeason:    getIntEnv("CURRENT_SEASON", 2025),
			MaxWeek:          getIntEnv("MAX_WEEK", 18),
			Concurrency:      getIntEnv("RECOMPUTE_CONCURRENCY", 8),
			MissingGameGrace: getDurationEnv("MISSING_GAME_GRACE", 72*time.Hour),
			Source:           strings.ToLower(getEnv("DATA_SOURCE", SourceMongo)),
			IsDevelopment:    strings.ToLower(environment) == "development",
		},
		Scheduler: SchedulerConfig{
			Enabled:       getBoolEnv("SCHEDULER_ENABLED", true),
			ScoringSpec:   getEnv("SCHEDULER_SCORING_SPEC", "*/5 * * * *"),
			SurvivorSpec:  getEnv("SCHEDULER_SURVIVOR_SPEC", "15 * * * *"),
			Timezone:      getEnv("SCHEDULER_TIMEZONE", "America/New_York"),
			ActiveWindow:  getDurationEnv("SCHEDULER_ACTIVE_WINDOW", 36*time.Hour),
			WatchGames:    getBoolEnv("WATCH_GAMES", false),
			WatchDebounce: getDurationEnv("WATCH_DEBOUNCE", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		Firestore: FirestoreConfig{
			ProjectID:    getEnv("FIRESTORE_PROJECT_ID", ""),
			GamesPath:    getEnv("FIRESTORE_GAMES_PATH", "artifacts/nerdfootball/public/data/nerdfootball_games"),
			PicksPath:    getEnv("FIRESTORE_PICKS_PATH", "artifacts/nerdfootball/public/data/nerdfootball_picks"),
			SurvivorPath: getEnv("FIRESTORE_SURVIVOR_PATH", "artifacts/nerdfootball/public/data/nerdSurvivor_picks"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("database port is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.App.CurrentSeason < 2000 || c.App.CurrentSeason > 2100 {
		return fmt.Errorf("current season must be between 2000 and 2100, got: %d", c.App.CurrentSeason)
	}
	if c.App.MaxWeek < 1 || c.App.MaxWeek > 25 {
		return fmt.Errorf("max week must be between 1 and 25, got: %d", c.App.MaxWeek)
	}
	if c.App.Concurrency < 1 {
		return fmt.Errorf("recompute concurrency must be positive, got: %d", c.App.Concurrency)
	}

	switch c.App.Source {
	case SourceMongo:
	case SourceFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required when DATA_SOURCE=firestore")
		}
	default:
		return fmt.Errorf("unknown data source %q (want %s or %s)", c.App.Source, SourceMongo, SourceFirestore)
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.ScoringSpec == "" || c.Scheduler.SurvivorSpec == "" {
			return fmt.Errorf("scheduler specs are required when SCHEDULER_ENABLED=true")
		}
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Logging: Level=%s, Color=%t", c.Logging.Level, c.Logging.EnableColor)
	logging.Infof("App: Season=%d, MaxWeek=%d, Concurrency=%d, MissingGameGrace=%s, Source=%s",
		c.App.CurrentSeason, c.App.MaxWeek, c.App.Concurrency, c.App.MissingGameGrace, c.App.Source)
	logging.Infof("Scheduler: Enabled=%t, Scoring=%q, Survivor=%q, TZ=%s, WatchGames=%t",
		c.Scheduler.Enabled, c.Scheduler.ScoringSpec, c.Scheduler.SurvivorSpec, c.Scheduler.Timezone, c.Scheduler.WatchGames)
	logging.Infof("Cache: TTL=%s", c.Cache.TTL)
	if c.Firestore.ProjectID != "" {
		logging.Infof("Firestore: Project=%s", c.Firestore.ProjectID)
	}
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
