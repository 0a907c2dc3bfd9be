package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds catalog database connection settings.
// Driver selects the backend: "sqlite" (default, file-based) or "postgres".
type DatabaseConfig struct {
	Driver             string
	SQLitePath         string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds blob store settings.
// Driver selects the backend: "local" (default, filesystem) or "minio".
type StorageConfig struct {
	Driver    string
	LocalRoot string
	MinIO     MinIOConfig
}

// MinIOConfig holds object storage settings for the S3-compatible backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds token signing settings for the access gate.
type AuthConfig struct {
	Secret     string
	Issuer     string
	TTLMinutes int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables so that the upload root and
// signing key are injected at construction time instead of living in
// package globals.
type AppConfig struct {
	AppHost        string
	Port           string
	MaxUploadBytes int
	Auth           AuthConfig
	Database       DatabaseConfig
	Storage        StorageConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		Auth: AuthConfig{
			Secret:     getEnv("AUTH_SECRET", ""),
			Issuer:     getEnv("AUTH_ISSUER", "docvault"),
			TTLMinutes: getEnvInt("AUTH_TTL_MINUTES", 60),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "sqlite"),
			SQLitePath:         getEnv("DB_SQLITE_PATH", "filemeta.db"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "local"),
			LocalRoot: getEnv("UPLOAD_DIR", "uploads"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
