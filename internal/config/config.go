package config

import (
	"fmt"
	"os"
	"time"

	"github.com/yukikurage/taskboard/internal/constants"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Session stores
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	DBDriver            string        `yaml:"db_driver"`
	DBHost              string        `yaml:"db_host"`
	DBPort              string        `yaml:"db_port"`
	DBUser              string        `yaml:"db_user"`
	DBPassword          string        `yaml:"db_password"`
	DBName              string        `yaml:"db_name"`
	SQLitePath          string        `yaml:"sqlite_path"`
	SessionStore        string        `yaml:"session_store"`
	RedisHost           string        `yaml:"redis_host"`
	RedisPort           string        `yaml:"redis_port"`
	SessionSecret       string        `yaml:"session_secret"`
	GinMode             string        `yaml:"gin_mode"`
	Port                string        `yaml:"port"`
	SessionPollInterval time.Duration `yaml:"session_poll_interval"`
	OpenAIAPIKey        string        `yaml:"openai_api_key"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		DBDriver:            DriverSQLite,
		DBHost:              "localhost",
		DBPort:              "3306",
		DBUser:              "taskuser",
		DBPassword:          "taskpassword",
		DBName:              "taskboard",
		SQLitePath:          "taskboard.db",
		SessionStore:        SessionStoreCookie,
		RedisHost:           "localhost",
		RedisPort:           "6379",
		SessionSecret:       "default-secret-key-change-me",
		GinMode:             "debug",
		Port:                "8080",
		SessionPollInterval: constants.DefaultPollInterval,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// TASKBOARD_CONFIG if set, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TASKBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.SessionStore = getEnv("SESSION_STORE", cfg.SessionStore)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)

	interval, err := getEnvDuration("SESSION_POLL_INTERVAL", cfg.SessionPollInterval)
	if err != nil {
		return nil, err
	}
	cfg.SessionPollInterval = interval

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMemory, DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionStore {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionPollInterval <= 0 {
		return fmt.Errorf("SESSION_POLL_INTERVAL must be positive, got %s", c.SessionPollInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
