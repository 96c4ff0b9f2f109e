package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// A missing required variable is fatal.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	required := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	var parseErr error
	integer := func(key string, fallback int) int {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("environment variable %s must be an integer: %w", key, err)
		}
		return n
	}

	cfg := Config{
		DBName:        required("DB_NAME"),
		MigrationsDir: optional("MIGRATIONS_DIR", "./migrations"),
		Port:          required("PORT"),
		JWTSecret:     required("JWT_SECRET"),
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		Slack: SlackConfig{
			Token:     optional("SLACK_BOT_TOKEN", ""),
			ChannelID: optional("SLACK_CHANNEL_ID", ""),
		},
		SES: SESConfig{
			AccessKeyID:     optional("SES_ACCESS_KEY_ID", ""),
			SecretAccessKey: optional("SES_SECRET_ACCESS_KEY", ""),
			Region:          optional("SES_REGION", ""),
			Sender:          optional("SES_SENDER", ""),
		},
		Redis: RedisConfig{
			Addr:     optional("REDIS_ADDR", ""),
			Password: optional("REDIS_PASSWORD", ""),
			DB:       integer("REDIS_DB", 0),
		},
		ProjectID:          optional("GCP_PROJECT", ""),
		CourtCacheTTL:      time.Duration(integer("COURT_CACHE_TTL_MINUTES", 10)) * time.Minute,
		DefaultPhoneRegion: optional("DEFAULT_PHONE_REGION", "US"),
		JoinRatePerMinute:  integer("JOIN_RATE_PER_MINUTE", 10),
		TrustProxy:         optional("TRUST_PROXY", "") == "true",
		ReminderCron:       optional("REMINDER_CRON", "0 18 * * *"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}
	if parseErr != nil {
		return Config{}, parseErr
	}
	return cfg, nil
}
