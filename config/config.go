package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string // Supabase Postgres connection string; empty means the store is unconfigured
	EncryptionKey string
	JWTSecret     string // empty disables the admin routes
	AdminPassword string
	CORSOrigin    string
	LogLevel      string

	KafkaBrokers  []string // empty logs follow-up checks instead of queueing them
	FollowupTopic string
	FollowupDelay time.Duration
	DBTimeout     time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:          get("PORT", "8080"),
		DatabaseURL:   get("SUPABASE_DB_URL", ""),
		EncryptionKey: must("ENCRYPTION_KEY"),
		JWTSecret:     get("JWT_SECRET", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		CORSOrigin:    get("CORS_ORIGIN", "*"),
		LogLevel:      get("LOG_LEVEL", "info"),
		KafkaBrokers:  list(get("KAFKA_BROKERS", "")),
		FollowupTopic: get("FOLLOWUP_TOPIC", "connection-checks"),
		FollowupDelay: duration("FOLLOWUP_DELAY", time.Second),
		DBTimeout:     duration("DB_TIMEOUT", 5*time.Second),
	}
	return cfg
}

// AdminEnabled reports whether the JWT protected admin routes can be served.
func (c Config) AdminEnabled() bool {
	return c.JWTSecret != "" && c.AdminPassword != ""
}

func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}

func duration(k string, def time.Duration) time.Duration {
	v := get(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("invalid duration for %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

func list(v string) []string {
	if v == "" {
		return nil
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
