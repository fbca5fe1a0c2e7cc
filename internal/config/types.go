package config

import "time"

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
	Payments PaymentsConfig `json:"payments"`
	Mail     MailConfig     `json:"mail"`
	Storage  StorageConfig  `json:"storage"`
	Sessions SessionsConfig `json:"sessions"`
	Quote    QuoteConfig    `json:"quote"`
}

type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	GracefulStop time.Duration `json:"graceful_stop"`
	AllowOrigin  string        `json:"allow_origin"`
}

type DatabaseConfig struct {
	URL      string `json:"-"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"-"`
	Schema   string `json:"schema"`
	SSLMode  string `json:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	AutoMigrate bool `json:"auto_migrate"`
}

type SecurityConfig struct {
	JWTSecret     string        `json:"-"`
	TokenTTL      time.Duration `json:"token_ttl"`
	TokenIssuer   string        `json:"token_issuer"`
	AdminEmail    string        `json:"admin_email"`
	AdminPassword string        `json:"-"`

	// Rate limiting
	RateLimitEnabled   bool    `json:"rate_limit_enabled"`
	RateLimitPerSecond float64 `json:"rate_limit_per_second"`
	RateLimitBurst     int     `json:"rate_limit_burst"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Format     string `json:"format"` // json, text
	Output     string `json:"output"` // stdout, file
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type PaymentsConfig struct {
	BaseURL       string        `json:"base_url"`
	KeyID         string        `json:"key_id"`
	KeySecret     string        `json:"-"`
	WebhookSecret string        `json:"-"`
	Currency      string        `json:"currency"`
	Timeout       time.Duration `json:"timeout"`
	CallbackURL   string        `json:"callback_url"`
}

type MailConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"-"`
	From    string        `json:"from"`
	ReplyTo string        `json:"reply_to"`
	Timeout time.Duration `json:"timeout"`
	Agency  string        `json:"agency"`
}

type StorageConfig struct {
	Endpoint        string `json:"endpoint"`
	AccountID       string `json:"account_id"`
	Bucket          string `json:"bucket"`
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
	PublicURL       string `json:"public_url"`
	MaxUploadMB     int    `json:"max_upload_mb"`
}

type SessionsConfig struct {
	ActiveWindow  time.Duration `json:"active_window"`
	IdleTimeout   time.Duration `json:"idle_timeout"`
	SweepInterval time.Duration `json:"sweep_interval"`
}

type QuoteConfig struct {
	RenderTimeout time.Duration `json:"render_timeout"`
}
