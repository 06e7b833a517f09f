package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Session store backends selectable via SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// Config represents application configuration loaded from environment
// variables. One struct serves both binaries; each reads the fields it
// cares about.
type Config struct {
	AppEnv string
	Port   string

	// sessiond
	SessionBackend string
	SessionDBPath  string
	DatabaseURL    string
	SessionTTL     time.Duration
	SweepInterval  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// widgetd
	OverlayMode      bool
	SessionID        string
	Snapshot         string
	SessionAPIURL    string
	OverlayBaseURL   string
	StateDir         string
	PollInterval     time.Duration
	DebounceInterval time.Duration
	EmbedPort        string
	SeedDonations    bool
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		SessionBackend: getEnv("SESSION_BACKEND", BackendBolt),
		SessionDBPath:  getEnv("SESSION_DB_PATH", "sessions.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionTTL:     time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*30)),
		SweepInterval:  time.Minute * time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 60)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),

		OverlayMode:      getEnvBool("WIDGET_OVERLAY", false),
		SessionID:        os.Getenv("WIDGET_SESSION_ID"),
		Snapshot:         os.Getenv("WIDGET_SNAPSHOT"),
		SessionAPIURL:    getEnv("SESSION_API_URL", "http://localhost:8080/api/session"),
		OverlayBaseURL:   getEnv("OVERLAY_BASE_URL", "http://localhost:5173/"),
		StateDir:         getEnv("WIDGET_STATE_DIR", ".goalwidget"),
		PollInterval:     time.Second * time.Duration(getEnvInt("SYNC_POLL_SECONDS", 3)),
		DebounceInterval: time.Millisecond * time.Duration(getEnvInt("TOKEN_DEBOUNCE_MS", 1000)),
		EmbedPort:        getEnv("EMBED_PORT", "8090"),
		SeedDonations:    getEnvBool("SEED_DONATIONS", true),
	}

	switch cfg.SessionBackend {
	case BackendMemory, BackendBolt:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SESSION_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
