package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the complete scoring configuration
type Config struct {
	Screen ScreenConfig
}

// ScreenConfig holds phenotype scoring defaults
type ScreenConfig struct {
	Transformation string  // count transform identifier, e.g. "log2(x+1)"
	Test           string  // statistical test identifier, e.g. "ttest"
	NReps          int     // expected replicates per condition
	Threshold      float64 // z-score magnitude required for a hit
	PValueCutoff   float64 // significance cutoff coupled with the threshold
	CtrlLabel      string  // target label marking negative controls

	// MinGrowthRateDelta guards the rho divisor when the untreated and
	// treated doubling rates are nearly equal.
	MinGrowthRateDelta float64
}

// Load builds configuration from the environment, reading a .env file when
// one is present.
func Load() (*Config, error) {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg := &Config{
		Screen: ScreenConfig{
			Transformation:     getEnv("SCREEN_TRANSFORMATION", "log2(x+1)"),
			Test:               getEnv("SCREEN_TEST", "ttest"),
			NReps:              getEnvInt("SCREEN_N_REPS", 3),
			Threshold:          getEnvFloat("SCREEN_HIT_THRESHOLD", 5),
			PValueCutoff:       getEnvFloat("SCREEN_PVALUE_CUTOFF", 0.05),
			CtrlLabel:          getEnv("SCREEN_CTRL_LABEL", "negCtrl"),
			MinGrowthRateDelta: getEnvFloat("SCREEN_MIN_GROWTH_DELTA", 1e-6),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without touching the environment
func Default() *Config {
	return &Config{
		Screen: ScreenConfig{
			Transformation:     "log2(x+1)",
			Test:               "ttest",
			NReps:              3,
			Threshold:          5,
			PValueCutoff:       0.05,
			CtrlLabel:          "negCtrl",
			MinGrowthRateDelta: 1e-6,
		},
	}
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	s := c.Screen
	if s.NReps < 2 {
		return fmt.Errorf("SCREEN_N_REPS must be at least 2, got %d", s.NReps)
	}
	if s.Threshold < 0 {
		return fmt.Errorf("SCREEN_HIT_THRESHOLD must be non-negative, got %g", s.Threshold)
	}
	if s.PValueCutoff <= 0 || s.PValueCutoff > 1 {
		return fmt.Errorf("SCREEN_PVALUE_CUTOFF must be in (0, 1], got %g", s.PValueCutoff)
	}
	if s.MinGrowthRateDelta <= 0 {
		return fmt.Errorf("SCREEN_MIN_GROWTH_DELTA must be positive, got %g", s.MinGrowthRateDelta)
	}
	if s.CtrlLabel == "" {
		return fmt.Errorf("SCREEN_CTRL_LABEL must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
