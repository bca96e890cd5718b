package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:     "8080",
			RequestTimeout: 30 * time.Second,
			DatabaseURL:    "postgres://localhost/edu",
			DBMaxConns:     10,
			DBMinConns:     2,
			JWTSecret:      "secret",
			JWTAccessTTL:   168 * time.Hour,
			JWTRefreshTTL:  720 * time.Hour,
		}
	}

	require.NoError(t, valid().Validate())

	t.Run("requires jwt secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWTSecret = "  "
		require.Error(t, cfg.Validate())
	})

	t.Run("requires database url", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseURL = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive token lifetimes", func(t *testing.T) {
		cfg := valid()
		cfg.JWTAccessTTL = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects inverted pool bounds", func(t *testing.T) {
		cfg := valid()
		cfg.DBMaxConns = 1
		cfg.DBMinConns = 5
		require.Error(t, cfg.Validate())
	})
}

func TestSplitCSV(t *testing.T) {
	require.Nil(t, splitCSV("  "))
	require.Equal(t, []string{"a", "b"}, splitCSV("a, b,"))
}
