// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
)

// Config holds application configuration
type Config struct {
	LogLevel  string
	LogPretty bool
	Port      int
	DevMode   bool

	// Stability holds the default tuning for new corrector sessions
	Stability stability.Params
	// DefaultSeed, when set, seeds sessions created without an explicit seed
	DefaultSeed *uint64
	// MaxSessions caps live sessions (0 = unlimited)
	MaxSessions int

	// AutoRunSchedule is a cron spec for the periodic drift job; empty disables it
	AutoRunSchedule string
	AutoRunSteps    uint32
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	autoRunSteps := getEnvAsInt("AUTO_RUN_STEPS", 100)
	if autoRunSteps < 0 || uint64(autoRunSteps) > math.MaxUint32 {
		return nil, fmt.Errorf("AUTO_RUN_STEPS out of range: %d", autoRunSteps)
	}

	cfg := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		Port:      getEnvAsInt("PORT", 8010),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		Stability: stability.Params{
			NoiseProbability: getEnvAsFloat("NOISE_PROBABILITY", stability.DefaultNoiseProbability),
			DecayFactor:      getEnvAsFloat("DECAY_FACTOR", stability.DefaultDecayFactor),
			RecoveryFactor:   getEnvAsFloat("RECOVERY_FACTOR", stability.DefaultRecoveryFactor),
		},
		MaxSessions:     getEnvAsInt("MAX_SESSIONS", 256),
		AutoRunSchedule: getEnv("AUTO_RUN_SCHEDULE", ""),
		AutoRunSteps:    uint32(autoRunSteps),
	}

	if raw := os.Getenv("DEFAULT_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_SEED %q: %w", raw, err)
		}
		cfg.DefaultSeed = &seed
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("MAX_SESSIONS must be >= 0, got %d", c.MaxSessions)
	}
	if err := c.Stability.Validate(); err != nil {
		return fmt.Errorf("invalid stability params: %w", err)
	}
	if c.AutoRunSchedule != "" && c.AutoRunSteps == 0 {
		return fmt.Errorf("AUTO_RUN_STEPS must be > 0 when AUTO_RUN_SCHEDULE is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
