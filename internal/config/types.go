package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	JWTSecret     string
	Turso         TursoConfig
	Slack         SlackConfig
	SES           SESConfig
	Redis         RedisConfig
	// ProjectID is the Google Cloud project for Pub/Sub. Empty disables events.
	ProjectID          string
	CourtCacheTTL      time.Duration
	DefaultPhoneRegion string
	JoinRatePerMinute  int
	TrustProxy         bool
	ReminderCron       string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether owner alerts should be posted to Slack.
func (c SlackConfig) Enabled() bool { return c.Token != "" && c.ChannelID != "" }

type SESConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Sender          string
}

func (c SESConfig) Enabled() bool { return c.Region != "" && c.Sender != "" }

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }
