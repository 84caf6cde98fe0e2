package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RedisURL      string
	RedisPassword string
	RedisDB       int
	HttpAddr      string
	DedupeTTL     time.Duration
	Debug         bool

	RecentSwapsVariant string
	RecentSwapsLimit   int
	StablecoinSymbols  []string
	ExplorerBaseURL    string
	DemoProducer       bool
}

var DefaultStablecoins = []string{"DAI", "USDC", "USDT", "TUSD", "PAX", "GUSD", "BUSD", "SAI"}

// Load reads an optional .env file, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[boot] ignoring .env: %v", err)
	}
	return GetConfig()
}

// GetConfig default values for using locally
func GetConfig() Config {
	return Config{
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       mustAtoi(getEnv("REDIS_DB", "0")),
		HttpAddr:      getEnv("HTTP_ADDR", ":8080"),
		DedupeTTL:     parseDuration(getEnv("DEDUPE_TTL", "25h")),
		Debug:         getEnvBool("DEBUG", false),

		RecentSwapsVariant: getEnv("RECENT_SWAPS_VARIANT", "full"),
		RecentSwapsLimit:   mustAtoi(getEnv("RECENT_SWAPS_LIMIT", "500")),
		StablecoinSymbols:  getEnvList("STABLECOIN_SYMBOLS", DefaultStablecoins),
		ExplorerBaseURL:    getEnv("EXPLORER_BASE_URL", "https://etherscan.io"),
		DemoProducer:       getEnvBool("DEMO_PRODUCER", true),
	}
}

// Validate checks values that have no safe fallback.
func (c Config) Validate() error {
	switch c.RecentSwapsVariant {
	case "full", "preview":
	default:
		return fmt.Errorf("RECENT_SWAPS_VARIANT must be full or preview, got %q", c.RecentSwapsVariant)
	}
	if c.RecentSwapsLimit < 1 {
		return fmt.Errorf("RECENT_SWAPS_LIMIT must be positive, got %d", c.RecentSwapsLimit)
	}
	if c.HttpAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

func mustAtoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatal(err)
	}
	return d
}
