package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/meridianshop/meridian-admin/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "x")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigIsProduction(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
	assert.False(t, (&Config{AppEnv: "staging"}).IsProduction())

	var nilCfg *Config
	assert.False(t, nilCfg.IsProduction())
}

func TestInTestModeRefresh(t *testing.T) {
	t.Setenv("MERIDIAN_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv("MERIDIAN_TEST_MODE", "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}