package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStrategyJWT    = "jwt"
	TokenStrategyPaseto = "paseto"

	minTokenSecretLen = 32
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Email     EmailConfig
	ImageHost ImageHostConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
	AutoMigrate    bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenSecret signs session tokens. PASETO uses its first 32 bytes.
	TokenSecret        []byte
	TokenStrategy      string
	TokenDuration      time.Duration
	ResetTokenDuration time.Duration
	// RequireToken guards profile and enrollment routes with a session token.
	RequireToken bool
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FrontendURL  string // Frontend URL for reset links
	Timeout      time.Duration
}

// ImageHostConfig describes the S3-compatible bucket that receives profile images.
type ImageHostConfig struct {
	CloudName string // bucket name; hosting is disabled when empty
	APIKey    string
	APISecret string
	Endpoint  string
	Region    string
	Timeout   time.Duration
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	externalTimeout := getDurationEnv("EXTERNAL_CALL_TIMEOUT", 10*time.Second)

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "learnhub"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
			AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenSecret:        []byte(getEnv("AUTH_TOKEN_SECRET", "")),
			TokenStrategy:      strings.ToLower(getEnv("AUTH_TOKEN_STRATEGY", TokenStrategyJWT)),
			TokenDuration:      getDurationEnv("AUTH_TOKEN_DURATION", time.Hour),
			ResetTokenDuration: getDurationEnv("AUTH_RESET_TOKEN_DURATION", time.Hour),
			RequireToken:       getBoolEnv("AUTH_REQUIRE_TOKEN", false),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", getEnv("MAIL_API_KEY", "")),
			FromEmail:    getEnv("MAIL_FROM", "onboarding@learnhub.dev"),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
			Timeout:      externalTimeout,
		},
		ImageHost: ImageHostConfig{
			CloudName: getEnv("CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUD_API_KEY", ""),
			APISecret: getEnv("CLOUD_API_SECRET", ""),
			Endpoint:  getEnv("CLOUD_ENDPOINT", ""),
			Region:    getEnv("CLOUD_REGION", "auto"),
			Timeout:   externalTimeout,
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getIntEnv("UPLOAD_MAX_BYTES", 5<<20)),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: getIntEnv("RATE_LIMIT_MAX", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	if len(c.Auth.TokenSecret) < minTokenSecretLen {
		return fmt.Errorf("AUTH_TOKEN_SECRET must be at least %d bytes, got %d", minTokenSecretLen, len(c.Auth.TokenSecret))
	}

	switch c.Auth.TokenStrategy {
	case TokenStrategyJWT, TokenStrategyPaseto:
	default:
		return fmt.Errorf("AUTH_TOKEN_STRATEGY must be %q or %q, got %q", TokenStrategyJWT, TokenStrategyPaseto, c.Auth.TokenStrategy)
	}

	if c.Auth.TokenDuration <= 0 || c.Auth.ResetTokenDuration <= 0 {
		return fmt.Errorf("token durations must be positive")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Enabled reports whether profile images are forwarded to the image host.
func (c *ImageHostConfig) Enabled() bool {
	return c.CloudName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv reads a whole number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
