package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, ":8080", cfg.HttpAddr)
	assert.Equal(t, 25*time.Hour, cfg.DedupeTTL)
	assert.Equal(t, "full", cfg.RecentSwapsVariant)
	assert.Equal(t, 500, cfg.RecentSwapsLimit)
	assert.Equal(t, DefaultStablecoins, cfg.StablecoinSymbols)
	assert.Equal(t, "https://etherscan.io", cfg.ExplorerBaseURL)
	require.NoError(t, cfg.Validate())
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEBUG", "true")
	t.Setenv("RECENT_SWAPS_VARIANT", "preview")
	t.Setenv("STABLECOIN_SYMBOLS", " DAI, USDC ,,")
	t.Setenv("DEMO_PRODUCER", "false")

	cfg := GetConfig()
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "preview", cfg.RecentSwapsVariant)
	assert.Equal(t, []string{"DAI", "USDC"}, cfg.StablecoinSymbols)
	assert.False(t, cfg.DemoProducer)
	require.NoError(t, cfg.Validate())
}

func TestGetEnvBoolIgnoresGarbage(t *testing.T) {
	t.Setenv("DEBUG", "maybe")
	assert.False(t, GetConfig().Debug)
}

func TestValidate(t *testing.T) {
	cfg := GetConfig()
	cfg.RecentSwapsVariant = "grid"
	assert.Error(t, cfg.Validate())

	cfg = GetConfig()
	cfg.RecentSwapsLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = GetConfig()
	cfg.HttpAddr = ""
	assert.Error(t, cfg.Validate())
}
