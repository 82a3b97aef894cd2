package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"medtracker"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	DBMaxOpenConns    int `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	DBConnMaxIdleMin  int `envconfig:"DB_CONN_MAX_IDLE_MINUTES" default:"5"`
	DBConnMaxLifeMin  int `envconfig:"DB_CONN_MAX_LIFETIME_MINUTES" default:"30"`
	DBConnectAttempts int `envconfig:"DB_CONNECT_ATTEMPTS" default:"30"`

	AssistantAPIKey  string `envconfig:"ASSISTANT_API_KEY"`
	AssistantModel   string `envconfig:"ASSISTANT_MODEL" default:"gpt-4o-mini"`
	AssistantBaseURL string `envconfig:"ASSISTANT_BASE_URL" default:"https://api.openai.com"`

	ReminderPollSeconds int `envconfig:"REMINDER_POLL_SECONDS" default:"15"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
