package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultRPCURL is the public mainnet-beta endpoint.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

type Config struct {
	RPCURL    string
	CacheSize int
	LogLevel  slog.Level
	Lang      string
}

// Load reads .env (when present) and the IDLKIT_* environment variables.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a getenv-like lookup.
func FromEnv(getenv func(string) string) *Config {
	return &Config{
		RPCURL:    firstNonEmpty(strings.TrimSpace(getenv("IDLKIT_RPC_URL")), strings.TrimSpace(getenv("SOLANA_RPC_URL")), DefaultRPCURL),
		CacheSize: parseInt(getenv("IDLKIT_CACHE_SIZE"), 1024),
		LogLevel:  parseLevel(getenv("IDLKIT_LOG_LEVEL")),
		Lang:      firstNonEmpty(strings.TrimSpace(getenv("IDLKIT_LANG")), "en"),
	}
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
