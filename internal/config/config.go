package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", ""),
			Port:         getEnvInt("PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulStop: getEnvDuration("SERVER_GRACEFUL_STOP", 5*time.Second),
			AllowOrigin:  getEnv("CORS_ALLOW_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", ""),
			Port:            getEnvInt("DB_PORT", 5432),
			Database:        getEnv("DB_DATABASE", "postgres"),
			Username:        getEnv("DB_USERNAME", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Schema:          getEnv("DB_SCHEMA", "public"),
			SSLMode:         getEnv("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Security: SecurityConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
			TokenIssuer:        getEnv("TOKEN_ISSUER", "travel-backoffice"),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
			AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
			RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 30),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE_PATH", "logs/backoffice.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 28),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Payments: PaymentsConfig{
			BaseURL:       getEnv("PAYMENTS_BASE_URL", "https://api.razorpay.com"),
			KeyID:         getEnv("PAYMENTS_KEY_ID", ""),
			KeySecret:     getEnv("PAYMENTS_KEY_SECRET", ""),
			WebhookSecret: getEnv("PAYMENTS_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENTS_CURRENCY", "INR"),
			Timeout:       getEnvDuration("PAYMENTS_TIMEOUT", 20*time.Second),
			CallbackURL:   getEnv("PAYMENTS_CALLBACK_URL", ""),
		},
		Mail: MailConfig{
			BaseURL: getEnv("MAIL_BASE_URL", "https://api.resend.com"),
			APIKey:  getEnv("MAIL_API_KEY", ""),
			From:    getEnv("MAIL_FROM", ""),
			ReplyTo: getEnv("MAIL_REPLY_TO", ""),
			Timeout: getEnvDuration("MAIL_TIMEOUT", 15*time.Second),
			Agency:  getEnv("AGENCY_NAME", "Travel Desk"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			Bucket:          getEnv("R2_BUCKET", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			MaxUploadMB:     getEnvInt("UPLOAD_MAX_MB", 10),
		},
		Sessions: SessionsConfig{
			ActiveWindow:  getEnvDuration("SESSION_ACTIVE_WINDOW", 2*time.Minute),
			IdleTimeout:   getEnvDuration("SESSION_IDLE_TIMEOUT", 10*time.Minute),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Quote: QuoteConfig{
			RenderTimeout: getEnvDuration("QUOTE_RENDER_TIMEOUT", 30*time.Second),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(cfg.Security.JWTSecret))
	}
	if cfg.Database.URL == "" && cfg.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if cfg.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", cfg.Sessions.SweepInterval)
	}
	if cfg.Sessions.IdleTimeout < cfg.Sessions.ActiveWindow {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT (%s) must not be shorter than SESSION_ACTIVE_WINDOW (%s)",
			cfg.Sessions.IdleTimeout, cfg.Sessions.ActiveWindow)
	}
	return nil
}

// DSN returns the connection string, preferring DATABASE_URL.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PublicEndpoint returns the S3 endpoint, deriving the R2 one from the
// account id when no explicit endpoint is set.
func (c *StorageConfig) PublicEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	}
	return ""
}

// Enabled reports whether object storage is configured.
func (c *StorageConfig) Enabled() bool {
	return c.Bucket != "" && c.PublicEndpoint() != "" && c.PublicURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
