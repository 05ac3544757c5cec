package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIURL is returned by Validate when no comparison backend is configured.
var ErrMissingAPIURL = errors.New("API_URL is not set")

type Config struct {
	Port                 int
	APIURL               string        // Base URL of the comparison service, without the /compare suffix
	CompareTimeout       time.Duration // Upper bound for a single comparison request
	CompareMinInterval   time.Duration // Minimum spacing between two submissions of one session
	MaxUploadBytes       int64
	ContainerHeight      int // Height in CSS pixels of the two image panels
	SessionTTL           time.Duration
	MaxSessions          int    // 0 disables the limit
	DatabasePath         string // Empty disables the comparison history
	HistoryRetentionDays int
	LogDirectory         string
	LogMaxSizeMB         int
	LogMaxBackups        int
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		APIURL:               strings.TrimSuffix(getEnv("API_URL", ""), "/"),
		CompareTimeout:       time.Duration(getEnvAsInt("COMPARE_TIMEOUT", 120)) * time.Second,
		CompareMinInterval:   time.Duration(getEnvAsInt("COMPARE_MIN_INTERVAL_MS", 1000)) * time.Millisecond,
		MaxUploadBytes:       getEnvAsInt64("MAX_UPLOAD_MB", 20) << 20,
		ContainerHeight:      getEnvAsInt("CONTAINER_HEIGHT", 600),
		SessionTTL:           time.Duration(getEnvAsInt("SESSION_TTL", 60)) * time.Minute,
		MaxSessions:          getEnvAsInt("MAX_SESSIONS", 200),
		DatabasePath:         getEnv("DB_PATH", filepath.Join(".", "data", "history.db")),
		HistoryRetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 30),
		LogDirectory:         getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogMaxSizeMB:         getEnvAsInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups:        getEnvAsInt("LOG_MAX_BACKUPS", 3),
	}
}

// Validate reports configuration that would make the server useless.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
