package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	AdminJWTSecret       string
	Environment          string
	StorageDir           string
	EncryptionKey        string
	EncryptionPassphrase string
	EncryptionSalt       string
	Compression          string
	ChunkSize            int
	VerifyChecksums      bool
	LockDir              string
	ArchiveInterval      time.Duration
	GrowthTrackInterval  time.Duration
	HealthCheckInterval  time.Duration
	ArchiveWindowDays    int
	DiskUsageThreshold   float64
	MaxFailedArchives    int
	CorruptionScanLimit  int
	RetentionYears       int
	RetentionOverrides   map[string]int
	TrackedTables        []string
	ThresholdRows        int64
	ThresholdDays        int
	RunMigrations        bool
	MetricsEnabled       bool
}

func Load() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		AdminJWTSecret:       getEnv("ADMIN_JWT_SECRET", ""),
		Environment:          getEnv("APP_ENV", "development"),
		StorageDir:           getEnv("ARCHIVE_STORAGE_DIR", "archives"),
		EncryptionKey:        getEnv("ARCHIVE_ENCRYPTION_KEY", ""),
		EncryptionPassphrase: getEnv("ARCHIVE_ENCRYPTION_PASSPHRASE", ""),
		EncryptionSalt:       getEnv("ARCHIVE_ENCRYPTION_SALT", ""),
		Compression:          getEnv("ARCHIVE_COMPRESSION", "gzip"),
		ChunkSize:            getEnvInt("ARCHIVE_CHUNK_SIZE", 10000),
		VerifyChecksums:      getEnvBool("ARCHIVE_VERIFY_CHECKSUMS", true),
		LockDir:              getEnv("ARCHIVE_LOCK_DIR", ""),
		ArchiveInterval:      getEnvDuration("ARCHIVE_INTERVAL", 24*time.Hour),
		GrowthTrackInterval:  getEnvDuration("GROWTH_TRACK_INTERVAL", time.Hour),
		HealthCheckInterval:  getEnvDuration("HEALTH_CHECK_INTERVAL", 6*time.Hour),
		ArchiveWindowDays:    getEnvInt("ARCHIVE_WINDOW_DAYS", 90),
		DiskUsageThreshold:   getEnvFloat("DISK_USAGE_THRESHOLD_PCT", 85),
		MaxFailedArchives:    getEnvInt("MAX_FAILED_ARCHIVES", 5),
		CorruptionScanLimit:  getEnvInt("CORRUPTION_SCAN_LIMIT", 10),
		RetentionYears:       getEnvInt("RETENTION_YEARS_DEFAULT", 7),
		RetentionOverrides:   getEnvIntMap("ARCHIVE_RETENTION_OVERRIDES"),
		TrackedTables:        getEnvList("ARCHIVE_TRACKED_TABLES"),
		ThresholdRows:        int64(getEnvInt("ARCHIVE_THRESHOLD_ROWS", 1000000)),
		ThresholdDays:        getEnvInt("ARCHIVE_THRESHOLD_DAYS", 30),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvList parses a comma-separated list, e.g. "api_logs,audit_events".
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvIntMap parses "name=value" pairs, e.g. "api_logs=3,audit_events=10".
func getEnvIntMap(key string) map[string]int {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	out := map[string]int{}
	for _, pair := range strings.Split(value, ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		out[name] = parsed
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		return fmt.Errorf("ARCHIVE_STORAGE_DIR is required")
	}
	switch c.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("ARCHIVE_COMPRESSION must be one of none, gzip, zstd")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("ARCHIVE_CHUNK_SIZE must be positive")
	}
	if c.DiskUsageThreshold <= 0 || c.DiskUsageThreshold > 100 {
		return fmt.Errorf("DISK_USAGE_THRESHOLD_PCT must be in (0, 100]")
	}
	if c.EncryptionPassphrase != "" && c.EncryptionSalt == "" {
		return fmt.Errorf("ARCHIVE_ENCRYPTION_SALT is required when ARCHIVE_ENCRYPTION_PASSPHRASE is set")
	}
	if c.EncryptionKey != "" && c.EncryptionPassphrase != "" {
		return fmt.Errorf("set ARCHIVE_ENCRYPTION_KEY or ARCHIVE_ENCRYPTION_PASSPHRASE, not both")
	}
	if c.Environment == "production" && strings.TrimSpace(c.AdminJWTSecret) == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET must be set to a strong value in production")
	}
	return nil
}
