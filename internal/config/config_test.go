package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{
		"TYPRR_ADDR":               ":9000",
		"TYPRR_DATABASE_DSN":       "postgres://localhost/typrr",
		"TYPRR_CHANNELS":           " general, races ,,",
		"TYPRR_RACE_WORDS":         "8",
		"TYPRR_PRACTICE_COUNTDOWN": "5",
		"TYPRR_PERSIST_TIMEOUT":    "750ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/typrr", cfg.DatabaseDSN)
	assert.Equal(t, []string{"general", "races"}, cfg.Channels)
	assert.Equal(t, 8, cfg.RaceWords)
	assert.Equal(t, 5, cfg.Countdown)
	assert.Equal(t, 750*time.Millisecond, cfg.PersistTimeout)
}

func TestFromEnv_InvalidValuesNamed(t *testing.T) {
	_, err := FromEnv(lookupMap(map[string]string{
		"TYPRR_RACE_WORDS":      "many",
		"TYPRR_PERSIST_TIMEOUT": "-1s",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TYPRR_RACE_WORDS")
	assert.Contains(t, err.Error(), "TYPRR_PERSIST_TIMEOUT")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TYPRR_LOG_LEVEL=debug\nTYPRR_RACE_DURATION=90\n"), 0o600))
	t.Setenv("TYPRR_RACE_DURATION", "30")
	t.Cleanup(func() { os.Unsetenv("TYPRR_LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.RaceDuration, "environment wins over the file")
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
