package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as the analysis service endpoint, the page host and the optional query history database.
//
// Example ENV equivalent:
//
//	ANALYZE_URL=http://localhost:8000/api/analyze
//	ANALYZE_HEALTH_URL=http://localhost:8000/health
//	ANALYZE_TIMEOUT=0s
//	SERVER_PORT=8080
//	SESSION_TTL=30m
//	HISTORY_ENABLED=false
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=postgres
//	POSTGRES_DB=tickerdesk
//	POSTGRES_SSLMODE=disable
type Config struct {
	Analysis AnalysisConfig // Remote analysis service
	Server   ServerConfig   // Page host (HTTP) settings
	History  HistoryConfig  // Query history toggle
	Postgres PostgresConfig // PostgreSQL connection settings (history store)
}

// AnalysisConfig points the page at the remote analysis service.
//
// Fields:
//   - URL: endpoint receiving POST {market, ticker}.
//   - HealthURL: endpoint probed by the readiness check.
//   - Timeout: HTTP client timeout. Zero means no timeout.
type AnalysisConfig struct {
	URL       string
	HealthURL string
	Timeout   time.Duration
}

// ServerConfig holds page host settings.
type ServerConfig struct {
	Port       string        // The TCP port the HTTP server will listen on (e.g., "8080")
	SessionTTL time.Duration // Idle time after which a hosted page is evicted
}

// HistoryConfig toggles recording of completed queries.
type HistoryConfig struct {
	Enabled bool
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("ANALYZE_URL", "http://localhost:8000/api/analyze")
	viper.SetDefault("ANALYZE_HEALTH_URL", "http://localhost:8000/health")
	viper.SetDefault("ANALYZE_TIMEOUT", "0s")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SESSION_TTL", "30m")

	viper.SetDefault("HISTORY_ENABLED", false)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tickerdesk")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Analysis: AnalysisConfig{
			URL:       viper.GetString("ANALYZE_URL"),
			HealthURL: viper.GetString("ANALYZE_HEALTH_URL"),
			Timeout:   viper.GetDuration("ANALYZE_TIMEOUT"),
		},
		Server: ServerConfig{
			Port:       viper.GetString("SERVER_PORT"),
			SessionTTL: viper.GetDuration("SESSION_TTL"),
		},
		History: HistoryConfig{
			Enabled: viper.GetBool("HISTORY_ENABLED"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the PostgreSQL connection string for database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Postgres settings are only required when history recording is enabled.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}

func missingKeys(cfg Config) []string {
	var missing []string

	if cfg.Analysis.URL == "" {
		missing = append(missing, "ANALYZE_URL")
	}
	if cfg.Analysis.Timeout < 0 {
		missing = append(missing, "ANALYZE_TIMEOUT")
	}
	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Server.SessionTTL <= 0 {
		missing = append(missing, "SESSION_TTL")
	}

	if !cfg.History.Enabled {
		return missing
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
