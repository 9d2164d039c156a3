package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLimit  = 300
	defaultWindow = time.Minute
)

// Rule is the rate limit for one endpoint. A Path ending in "/"
// matches as a prefix; any other Path matches exactly.
type Rule struct {
	Path   string
	Method string
	Limit  int // requests per Window
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	Rules           []Rule
}

// LoadConfig reads rate limiting configuration from the environment.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", defaultLimit),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", defaultWindow),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Allowlist:       parseClientList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		Blocklist:       parseClientList(os.Getenv("RATE_LIMIT_BLOCKLIST")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules tiers the API by cost. The catalog rebuild embeds every
// occupation in one request; analyze, chat and search each spend one
// embedding call. The health check is unlimited via the matcher.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/api/initialize-vectors", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/api/analyze-job", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/chat", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/search-jobs", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// parseClientList parses a comma-separated list of client addresses.
func parseClientList(list string) map[string]bool {
	clients := make(map[string]bool)
	for _, entry := range strings.Split(list, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			clients[entry] = true
		}
	}
	return clients
}
