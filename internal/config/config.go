package config

import (
	"time"

	pkgconfig "github.com/playfulorigins333/sirens-forge-master-sub001/pkg/config"
)

// Config stores environment configuration for Herald.
type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	ServiceToken    string
	KafkaBrokers    []string
	KafkaTopic      string
	RunInterval     time.Duration
	DispatchEnabled bool
	AlertWebhookURL string
}

// Load reads the Herald configuration from environment variables.
func Load() Config {
	return Config{
		Port:            pkgconfig.GetEnv("PORT", "18040"),
		DatabaseURL:     pkgconfig.RequireEnv("DATABASE_URL"),
		JWTSecret:       pkgconfig.RequireEnv("JWT_SECRET"),
		ServiceToken:    pkgconfig.RequireEnv("SERVICE_TOKEN"),
		KafkaBrokers:    pkgconfig.GetEnvStringSlice("KAFKA_BROKERS", nil),
		KafkaTopic:      pkgconfig.GetEnv("KAFKA_TOPIC", "autopost.decisions"),
		RunInterval:     pkgconfig.GetEnvDuration("AUTOPOST_RUN_INTERVAL", time.Minute),
		DispatchEnabled: pkgconfig.GetEnvBool("DISPATCH_ENABLED", true),
		AlertWebhookURL: pkgconfig.GetEnv("ALERT_WEBHOOK_URL", ""),
	}
}

// KafkaEnabled reports whether a decision event stream is configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
