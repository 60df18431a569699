package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string

	// Database
	DatabaseURL string

	// Storage
	StorageBackend  string // "local" or "sftp"
	LocalStorageDir string
	LocalFallback   string
	StorageTimeout  time.Duration

	// SFTP (primary when StorageBackend is "sftp")
	SFTPHost      string
	SFTPPort      string
	SFTPUser      string
	SFTPPassword  string
	SFTPRemoteDir string

	// Supabase mirror (optional)
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// Security
	DeleteAllSecret string
	AdminJWTSecret  string

	// Image processing
	MaxUploadBytes int64
	MaxImageWidth  int
	MaxImageHeight int
	JPEGQuality    int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageBackend:  getEnv("STORAGE_BACKEND", "local"),
		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "/var/lib/entradas/photos"),
		LocalFallback:   getEnv("LOCAL_STORAGE_FALLBACK", "uploads"),
		StorageTimeout:  time.Duration(getEnvInt("STORAGE_TIMEOUT_SECONDS", 30)) * time.Second,

		SFTPHost:      getEnv("SFTP_HOST", ""),
		SFTPPort:      getEnv("SFTP_PORT", "22"),
		SFTPUser:      getEnv("SFTP_USER", ""),
		SFTPPassword:  getEnv("SFTP_PASSWORD", ""),
		SFTPRemoteDir: getEnv("SFTP_REMOTE_DIR", "entradas"),

		SupabaseURL:    getEnv("SUPABASE_URL", ""),
		SupabaseKey:    getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseBucket: getEnv("SUPABASE_STORAGE_BUCKET", "entradas-photos"),

		DeleteAllSecret: getEnv("DELETE_ALL_SECRET", ""),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxImageWidth:  getEnvInt("MAX_IMAGE_WIDTH", 800),
		MaxImageHeight: getEnvInt("MAX_IMAGE_HEIGHT", 600),
		JPEGQuality:    getEnvInt("JPEG_QUALITY", 60),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.StorageBackend != "local" && c.StorageBackend != "sftp" {
		return fmt.Errorf("STORAGE_BACKEND must be \"local\" or \"sftp\", got %q", c.StorageBackend)
	}
	if c.StorageBackend == "sftp" {
		if c.SFTPHost == "" || c.SFTPUser == "" {
			return fmt.Errorf("SFTP_HOST and SFTP_USER are required for the sftp backend")
		}
	}
	if c.DeleteAllSecret == "" {
		return fmt.Errorf("DELETE_ALL_SECRET is required")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100")
	}
	return nil
}

// MirrorConfigured reports whether the optional cloud mirror is set up.
func (c *Config) MirrorConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
