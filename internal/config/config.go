package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig
	Workbook     WorkbookConfig
	Schedule     ScheduleConfig
	Workflow     WorkflowConfig
	Upload       UploadConfig
	Document     DocumentConfig
	Seed         SeedConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	CORSOrigins []string
}

// OAuth2GoogleConfig is optional; Google sign-in stays disabled while ClientID is empty.
type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

// WorkbookConfig points at the xlsx file backing attendance, NTE and document forms.
type WorkbookConfig struct {
	Path string
}

type ScheduleConfig struct {
	CacheTTL time.Duration
	Timezone string
}

type WorkflowConfig struct {
	SLACheckInterval   time.Duration
	TokenPurgeInterval time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

type DocumentConfig struct {
	CompanyName string
	LogoPath    string
}

// SeedConfig creates the first administrator when the users table is empty.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment")
	}

	config := &Config{}
	var errs []error

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ops_backend"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getInt("DB_MAX_CONNS", 25, &errs)),
		MinConns: int32(getInt("DB_MIN_CONNS", 5, &errs)),
	}

	config.App = AppConfig{
		Port:        getInt("APP_PORT", 8080, &errs),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  getDuration("JWT_ACCESS_EXPIRATION_TIME", 30*time.Minute, &errs),
		RefreshExpiration: getDuration("JWT_REFRESH_EXPIRATION_TIME", 168*time.Hour, &errs),
	}

	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		Scopes:       getEnvSlice("GOOGLE_SCOPES", "openid,email,profile"),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
	}
	config.Workbook = WorkbookConfig{
		Path: getEnv("WORKBOOK_PATH", "./data/operations.xlsx"),
	}
	config.Schedule = ScheduleConfig{
		CacheTTL: getDuration("SCHEDULE_CACHE_TTL", 60*time.Second, &errs),
		Timezone: getEnv("SCHEDULE_TIMEZONE", "Asia/Manila"),
	}
	config.Workflow = WorkflowConfig{
		SLACheckInterval:   getDuration("WORKFLOW_SLA_CHECK_INTERVAL", 5*time.Minute, &errs),
		TokenPurgeInterval: getDuration("REFRESH_TOKEN_PURGE_INTERVAL", 24*time.Hour, &errs),
	}
	config.Upload = UploadConfig{
		MaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 10<<20, &errs)),
	}
	config.Document = DocumentConfig{
		CompanyName: getEnv("DOCUMENT_COMPANY_NAME", "BPO Operations"),
		LogoPath:    getEnv("DOCUMENT_LOGO_PATH", "branding/logo.png"),
	}
	config.Seed = SeedConfig{
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWT.Secret) < 32 && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters in production")
	}
	if c.JWT.AccessExpiration <= 0 || c.JWT.RefreshExpiration <= c.JWT.AccessExpiration {
		return fmt.Errorf("JWT refresh expiration must be longer than access expiration")
	}
	if c.OAuth2Google.ClientID != "" {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
		}
	}
	if c.Workbook.Path == "" {
		return fmt.Errorf("WORKBOOK_PATH is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}
	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves the schedule timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
