package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RECONCILE_INTERVAL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./artlease.db", cfg.DBPath)
	assert.Equal(t, "./artlease-cart.json", cfg.CartStorePath)
	assert.Equal(t, "static/uploads", cfg.UploadDir)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.Len(t, cfg.SessionKey, 32)
}

func TestLoadConfigInvalidPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
}

func TestLoadConfigReconcileInterval(t *testing.T) {
	t.Run("valid duration is honored", func(t *testing.T) {
		t.Setenv("RECONCILE_INTERVAL", "30s")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	})

	t.Run("garbage falls back to five minutes", func(t *testing.T) {
		t.Setenv("RECONCILE_INTERVAL", "soon")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	})

	t.Run("non-positive falls back to five minutes", func(t *testing.T) {
		t.Setenv("RECONCILE_INTERVAL", "-1m")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	})
}

func TestLoadKey(t *testing.T) {
	t.Run("valid base64 key is decoded", func(t *testing.T) {
		raw := make([]byte, 32)
		for i := range raw {
			raw[i] = byte(i)
		}
		t.Setenv("CSRF_KEY", base64.StdEncoding.EncodeToString(raw))

		assert.Equal(t, raw, loadKey("CSRF_KEY"))
	})

	t.Run("short key is replaced with a generated one", func(t *testing.T) {
		t.Setenv("CSRF_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

		key := loadKey("CSRF_KEY")
		assert.Len(t, key, 32)
		assert.NotEqual(t, []byte("short"), key)
	})

	t.Run("invalid base64 is replaced with a generated one", func(t *testing.T) {
		t.Setenv("CSRF_KEY", "%%% not base64 %%%")

		assert.Len(t, loadKey("CSRF_KEY"), 32)
	})
}
