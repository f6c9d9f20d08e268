// Package engine wires the normalisation, colouring, repair and finishing
// stages into the 8-step driver pipeline of spec.md §4.7, plus the ambient
// configuration, logging and metrics that surround it.
package engine

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is loaded the way noah-isme-sma-adp-api/pkg/config.Load does it:
// godotenv for local .env files, viper for env-var overrides, nested
// sub-configs per concern.
type Config struct {
	Env string

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Solver   SolverConfig
}

// DatabaseConfig configures the sqlx/lib-pq persistence layer (spec.md §6).
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the idempotent-rerun cache (spec.md §9 design
// note).
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig configures the restart/backtrack/repair/finisher bounds of
// spec.md §4.2-§4.6.
type SolverConfig struct {
	RestartSeeds       int // seeds tried per slot order, spec.md §4.2
	ShrinkTolerance    int // spec.md §9 Open Question: accept a shrink if triples <= best+tolerance
	BacktrackMaxDur    time.Duration
	BacktrackMaxCalls  int
	RepairMaxPasses    int
	RepairMaxMoves     int
	FinisherTimeLimit  time.Duration
	FinisherEnabled    bool
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// LoadConfig mirrors the teacher-adjacent repo's Load(): read .env if
// present, apply defaults, let real environment variables win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("ENV"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Solver: SolverConfig{
			RestartSeeds:      v.GetInt("SOLVER_RESTART_SEEDS"),
			ShrinkTolerance:   v.GetInt("SOLVER_SHRINK_TOLERANCE"),
			BacktrackMaxDur:   parseDuration(v.GetString("SOLVER_BACKTRACK_MAX_DURATION"), 10*time.Second),
			BacktrackMaxCalls: v.GetInt("SOLVER_BACKTRACK_MAX_CALLS"),
			RepairMaxPasses:   v.GetInt("SOLVER_REPAIR_MAX_PASSES"),
			RepairMaxMoves:    v.GetInt("SOLVER_REPAIR_MAX_MOVES"),
			FinisherTimeLimit: parseDuration(v.GetString("SOLVER_FINISHER_TIME_LIMIT"), 45*time.Second),
			FinisherEnabled:   v.GetBool("SOLVER_FINISHER_ENABLED"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_RESTART_SEEDS", 5)
	v.SetDefault("SOLVER_SHRINK_TOLERANCE", 5)
	v.SetDefault("SOLVER_BACKTRACK_MAX_DURATION", "10s")
	v.SetDefault("SOLVER_BACKTRACK_MAX_CALLS", 2_000_000)
	v.SetDefault("SOLVER_REPAIR_MAX_PASSES", 10)
	v.SetDefault("SOLVER_REPAIR_MAX_MOVES", 2000)
	v.SetDefault("SOLVER_FINISHER_TIME_LIMIT", "45s")
	v.SetDefault("SOLVER_FINISHER_ENABLED", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
