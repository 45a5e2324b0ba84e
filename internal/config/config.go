package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, must cover a full assistant round trip

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ChatEndpoint string        // upstream assistant URL (ex: https://assistant.internal/chat)
	ChatTimeout  time.Duration // timeout for one assistant call

	OriginsFile           string        // path to origins.yaml with per-origin field aliases (optional, empty = built-ins only)
	ProfileReloadInterval time.Duration // interval to reload origins.yaml (default: 24h)

	SessionMaxIdle       time.Duration // idle time before a session is expired (default: 2h)
	SessionSweepInterval time.Duration // interval between idle-session sweeps (default: 10m)

	// Redis. Empty RedisAddr selects the in-memory store.
	RedisAddr             string
	RedisUser             string
	RedisPassword         string
	RedisPasswordRequired bool // true => require password, false => allow empty password
	RedisDB               int
	RedisDT               time.Duration // dial timeout (ex: 5s)
	RedisRT               time.Duration // read timeout (ex: 3s)
	RedisWT               time.Duration // write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedOrigins []string // origins allowed by CORS (default: "*")
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict infra endpoints to specific IPs/CIDRs
	TrustProxy     bool     // true => trust X-Forwarded-For headers

	RateLimitEnabled      bool
	RateLimitBurst        int
	RateLimitRefillPerMin int
	RateLimitMaxEntries   int
}

func Load() *Config {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("CURIO_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: mustDuration("CURIO_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CURIO_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("CURIO_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CURIO_PRETTY_LOG", false),

		// Assistant proxy
		ChatEndpoint: requireEnv("CURIO_CHAT_ENDPOINT"),
		ChatTimeout:  mustDuration("CURIO_CHAT_TIMEOUT", 45*time.Second),

		// Normalization profiles
		OriginsFile:           getenv("CURIO_ORIGINS_FILE", ""),
		ProfileReloadInterval: mustDuration("CURIO_PROFILE_RELOAD_INTERVAL", 24*time.Hour),

		// Session lifecycle
		SessionMaxIdle:       mustDuration("CURIO_SESSION_MAX_IDLE", 2*time.Hour),
		SessionSweepInterval: mustDuration("CURIO_SESSION_SWEEP_INTERVAL", 10*time.Minute),

		// Redis settings
		RedisAddr:             getenv("CURIO_REDIS_ADDR", ""),
		RedisUser:             getenv("CURIO_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("CURIO_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("CURIO_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("CURIO_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins: splitAndTrimDefault(getenv("CURIO_ALLOWED_ORIGINS", "*")),
		AllowedHosts:   splitAndTrimDefault(getenv("CURIO_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrimDefault(getenv("CURIO_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("CURIO_TRUST_PROXY", true),

		// Rate limiting
		RateLimitEnabled:      mustBool("CURIO_RATE_LIMIT_ENABLED", true),
		RateLimitBurst:        getenvInt("CURIO_RATE_LIMIT_BURST", 20),
		RateLimitRefillPerMin: getenvInt("CURIO_RATE_LIMIT_REFILL_PER_MIN", 60),
		RateLimitMaxEntries:   getenvInt("CURIO_RATE_LIMIT_MAX_ENTRIES", 10000),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: CURIO_REDIS_PASSWORD is required when CURIO_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrimDefault(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
