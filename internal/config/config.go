package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Session   SessionConfig   `mapstructure:"session"`
	Ebay      EbayConfig      `mapstructure:"ebay"`
	Email     EmailConfig     `mapstructure:"email"`
	Upload    UploadConfig    `mapstructure:"upload"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds Redis configuration. Redis is optional and only backs
// the submission rate limiter.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig holds the limit applied to form submissions
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SessionConfig holds the key used to sign flash cookies
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	Secure bool   `mapstructure:"secure"`
}

// EbayConfig holds Trading API credentials and transport settings
type EbayConfig struct {
	AppID     string `mapstructure:"app_id"`
	DevID     string `mapstructure:"dev_id"`
	CertID    string `mapstructure:"cert_id"`
	AuthToken string `mapstructure:"auth_token"`
	// SiteID is the eBay site the calls are made against ("0" is US)
	SiteID string `mapstructure:"site_id"`
	// Endpoint is the Trading API URL; point it at the sandbox for testing
	Endpoint           string        `mapstructure:"endpoint"`
	CompatibilityLevel string        `mapstructure:"compatibility_level"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email provider to use: "smtp", "gmail", "ses" or "log"
	Provider string `mapstructure:"provider"`
	// From is the sender address; defaults to the SMTP username
	From string `mapstructure:"from"`
	// To is the mailbox that receives submissions; defaults to From
	To          string        `mapstructure:"to"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`

	SMTP  SMTPConfig       `mapstructure:"smtp"`
	Gmail GmailEmailConfig `mapstructure:"gmail"`
	SES   SESEmailConfig   `mapstructure:"ses"`
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// TLSMode is "implicit" (SMTPS, port 465) or "starttls" (port 587)
	TLSMode string `mapstructure:"tls_mode"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
	SenderName   string `mapstructure:"sender_name"`
}

// SESEmailConfig holds AWS SES configuration
type SESEmailConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// UploadConfig holds the submission upload constraints
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxImages         int      `mapstructure:"max_images"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	// MaxRequestBytes bounds the whole multipart body
	MaxRequestBytes int64 `mapstructure:"max_request_bytes"`
	// MaxMemory is how much of the multipart body is kept in memory before
	// spilling to temporary files
	MaxMemory int64 `mapstructure:"max_memory"`
	// SweepSchedule is the cron spec for the stale staging sweep; empty disables it
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	StaleAfter    time.Duration `mapstructure:"stale_after"`
}

// legacyEnv maps config keys to the bare variable names used by existing
// deployments' .env files.
var legacyEnv = map[string]string{
	"ebay.app_id":         "APP_ID",
	"ebay.dev_id":         "DEV_ID",
	"ebay.cert_id":        "CERT_ID",
	"ebay.auth_token":     "AUTH_TOKEN",
	"email.smtp.username": "EMAIL_USER",
	"email.smtp.password": "EMAIL_PASS",
}

// Load reads configuration from .env, an optional config file and environment variables
func Load() (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range legacyEnv {
		prefixed := "STOREFRONT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 5)
	v.SetDefault("rate_limit.window", "10m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)

	// eBay defaults
	v.SetDefault("ebay.app_id", "")
	v.SetDefault("ebay.dev_id", "")
	v.SetDefault("ebay.cert_id", "")
	v.SetDefault("ebay.auth_token", "")
	v.SetDefault("ebay.site_id", "0")
	v.SetDefault("ebay.endpoint", "https://api.ebay.com/ws/api.dll")
	v.SetDefault("ebay.compatibility_level", "1193")
	v.SetDefault("ebay.timeout", "15s")

	// Email defaults
	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.from", "")
	v.SetDefault("email.to", "")
	v.SetDefault("email.send_timeout", "30s")
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 465)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.tls_mode", "implicit")
	v.SetDefault("email.gmail.sender_name", "")
	v.SetDefault("email.ses.region", "us-east-1")

	// Upload defaults
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_images", 20)
	v.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg", "gif"})
	v.SetDefault("upload.max_request_bytes", 200<<20)
	v.SetDefault("upload.max_memory", 32<<20)
	v.SetDefault("upload.sweep_schedule", "@every 15m")
	v.SetDefault("upload.stale_after", "1h")
}

// applyDerived fills values that default to other settings
func (c *Config) applyDerived() {
	if c.Email.From == "" {
		c.Email.From = c.Email.SMTP.Username
	}
	if c.Email.To == "" {
		c.Email.To = c.Email.From
	}

	exts := make([]string, 0, len(c.Upload.AllowedExtensions))
	for _, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.Upload.AllowedExtensions = exts
}

// Validate checks the invariants the handlers rely on
func (c *Config) Validate() error {
	if c.Upload.Dir == "" {
		return errors.New("config: upload.dir is required")
	}
	if c.Upload.MaxImages <= 0 {
		return fmt.Errorf("config: upload.max_images must be positive, got %d", c.Upload.MaxImages)
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("config: upload.allowed_extensions must not be empty")
	}

	switch c.Email.Provider {
	case "smtp":
		switch c.Email.SMTP.TLSMode {
		case "implicit", "starttls":
		default:
			return fmt.Errorf("config: unknown email.smtp.tls_mode %q", c.Email.SMTP.TLSMode)
		}
	case "gmail", "ses", "log":
	default:
		return fmt.Errorf("config: unknown email.provider %q", c.Email.Provider)
	}

	// The log provider never delivers, so it runs without addresses
	if c.Email.Provider != "log" && (c.Email.From == "" || c.Email.To == "") {
		return fmt.Errorf("config: email.from and email.to are required for provider %q (set email.from or EMAIL_USER)", c.Email.Provider)
	}

	if c.RateLimit.Enabled && c.Redis.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("config: rate_limit.limit and rate_limit.window must be positive")
	}

	return nil
}

// EnsureUploadDir creates the staging directory if it does not exist
func (c *Config) EnsureUploadDir() error {
	if err := os.MkdirAll(c.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", c.Upload.Dir, err)
	}
	return nil
}
