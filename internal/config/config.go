package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Report  ReportConfig
	Gemini  GeminiConfig
	Session SessionConfig
	Storage StorageConfig
	Upload  UploadConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Name           string
	Version        string
	AllowedOrigins []string
}

// ReportConfig holds defaults applied while importing and listing performance data
type ReportConfig struct {
	Year         int
	DefaultScore float64
	PerPage      int
}

// GeminiConfig holds the LLM provider settings. An empty APIKey disables the
// provider and every annotation falls back to local notes.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	SweepInterval time.Duration
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

type UploadConfig struct {
	MaxBytes int64
	MaxFiles int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Name:           getEnv("APP_NAME", "performance-dashboard"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Report configuration
	year, err := getEnvInt("REPORT_YEAR", time.Now().Year())
	if err != nil {
		return nil, err
	}
	defaultScore, err := getEnvFloat("REPORT_DEFAULT_SCORE", 3.0)
	if err != nil {
		return nil, err
	}
	perPage, err := getEnvInt("REPORT_PER_PAGE", 10)
	if err != nil {
		return nil, err
	}

	config.Report = ReportConfig{
		Year:         year,
		DefaultScore: defaultScore,
		PerPage:      perPage,
	}

	// Gemini configuration
	temperature, err := getEnvFloat("GEMINI_TEMPERATURE", 0.5)
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := getEnvDuration("GEMINI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	config.Gemini = GeminiConfig{
		APIKey:      strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature: temperature,
		Timeout:     geminiTimeout,
	}

	// Session configuration
	sessionTTL, err := getEnvDuration("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Session = SessionConfig{
		Secret:        getEnv("SESSION_SECRET", ""),
		TTL:           sessionTTL,
		SweepInterval: sweepInterval,
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:  getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%d/files", appPort)),
	}

	// Upload configuration
	maxBytes, err := getEnvInt("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	maxFiles, err := getEnvInt("UPLOAD_MAX_FILES", 12)
	if err != nil {
		return nil, err
	}

	config.Upload = UploadConfig{
		MaxBytes: int64(maxBytes),
		MaxFiles: maxFiles,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if c.Report.Year < 2000 || c.Report.Year > 2100 {
		return fmt.Errorf("REPORT_YEAR must be between 2000 and 2100")
	}
	if c.Report.DefaultScore < 0 {
		return fmt.Errorf("REPORT_DEFAULT_SCORE must not be negative")
	}
	if c.Report.PerPage <= 0 {
		return fmt.Errorf("REPORT_PER_PAGE must be positive")
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be between 0 and 2")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs
func (c *Config) ValidateServer() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, evaluation notes will use the local fallback")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
