package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the TUI, the web server and the CLI.
// Command-line flags override these values.
type Config struct {
	DataDir string
	APIURL  string
	City    string
	Year    int
	Port    int

	CacheTTL   time.Duration
	MaxRetries int

	AnthropicAPIKey string

	PostgresDSN      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		DataDir: getEnv("BERLINSTATS_DATA_DIR", "tmpdata/"),
		APIURL:  getEnv("BERLINSTATS_API_URL", ""),
		City:    getEnv("BERLINSTATS_CITY", "Berlin"),
		Year:    getEnvInt("BERLINSTATS_YEAR", 2024),
		Port:    getEnvInt("BERLINSTATS_PORT", 3000),

		CacheTTL:   time.Duration(getEnvInt("BERLINSTATS_CACHE_TTL", 10)) * time.Minute,
		MaxRetries: getEnvInt("BERLINSTATS_MAX_RETRIES", 3),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "berlinstats"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "berlinstats"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string. POSTGRES_DSN wins over the
// individual POSTGRES_* parts.
func (c *Config) DSN() string {
	if c.PostgresDSN != "" {
		return c.PostgresDSN
	}
	dsn := "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
	if c.PostgresPassword != "" {
		dsn += " password=" + c.PostgresPassword
	}
	return dsn
}

// UsesRemote reports whether data should come from the remote API instead
// of the local store.
func (c *Config) UsesRemote() bool {
	return c.APIURL != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
