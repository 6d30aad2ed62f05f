package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	MySQLDSN  string
	RedisAddr string

	// Kafka analytics sink; empty brokers disable analytics.
	KafkaBrokers []string
	KafkaTopic   string

	// SMTP for purchase confirmations; empty host disables email.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Optional Gemini key; empty disables the enhancement worker.
	GeminiAPIKey string

	// "session" (default) or "github" for externally assigned buyer logins.
	IdentityAssignMode string
	GithubToken        string

	EffectsPoolSize   int
	EnhanceQueueSize  int
	EnhanceWorkers    int
	ShutdownTimeoutMs int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			brokers = append(brokers, strings.TrimSpace(b))
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/digistall?parseTime=true"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: brokers,
		KafkaTopic:   getEnv("KAFKA_TOPIC", "marketplace.events"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvAsInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "Digistall <noreply@digistall.dev>"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		IdentityAssignMode: getEnv("IDENTITY_ASSIGN_MODE", "session"),
		GithubToken:        os.Getenv("GITHUB_TOKEN"),

		EffectsPoolSize:   getEnvAsInt("EFFECTS_POOL_SIZE", 32),
		EnhanceQueueSize:  getEnvAsInt("ENHANCE_QUEUE_SIZE", 1000),
		EnhanceWorkers:    getEnvAsInt("ENHANCE_WORKERS", 4),
		ShutdownTimeoutMs: getEnvAsInt("SHUTDOWN_TIMEOUT_MS", 5000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}
