// Package config reads settings from the environment, optionally seeded from
// a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Addr           string
	DatabaseDSN    string
	LogLevel       string
	WordsFile      string
	Channels       []string
	RaceWords      int
	RaceDuration   int
	PracticeWords  int
	PracticeTime   int
	Countdown      int
	PersistTimeout time.Duration
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		DatabaseDSN:    "file:typrr.db",
		LogLevel:       "info",
		Channels:       []string{"general"},
		RaceWords:      5,
		RaceDuration:   60,
		PracticeWords:  5,
		PracticeTime:   60,
		Countdown:      3,
		PersistTimeout: 5 * time.Second,
	}
}

// Load reads envFile if it exists (a missing file is fine) and then the
// TYPRR_* variables. Variables already set in the environment win over the
// file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: want a positive integer, got %q", key, v))
			return
		}
		*dst = n
	}

	str("TYPRR_ADDR", &cfg.Addr)
	str("TYPRR_DATABASE_DSN", &cfg.DatabaseDSN)
	str("TYPRR_LOG_LEVEL", &cfg.LogLevel)
	str("TYPRR_WORDS_FILE", &cfg.WordsFile)
	num("TYPRR_RACE_WORDS", &cfg.RaceWords)
	num("TYPRR_RACE_DURATION", &cfg.RaceDuration)
	num("TYPRR_PRACTICE_WORDS", &cfg.PracticeWords)
	num("TYPRR_PRACTICE_DURATION", &cfg.PracticeTime)
	num("TYPRR_PRACTICE_COUNTDOWN", &cfg.Countdown)

	if v, ok := lookup("TYPRR_CHANNELS"); ok && strings.TrimSpace(v) != "" {
		cfg.Channels = nil
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.Channels = append(cfg.Channels, c)
			}
		}
	}
	if v, ok := lookup("TYPRR_PERSIST_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("TYPRR_PERSIST_TIMEOUT: want a positive duration, got %q", v))
		} else {
			cfg.PersistTimeout = d
		}
	}

	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}
