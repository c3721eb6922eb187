package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultLinkSecret is used for share-link tokens when LINK_SECRET is unset.
// It is rejected in production.
const DefaultLinkSecret = "statementapi-default-link-secret"

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" env-default:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" env-default:"300"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"financial-statements"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

// S3Config holds settings for the AWS S3 storage driver. Empty credentials fall
// back to the default AWS credential chain.
type S3Config struct {
	Region          string `env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Bucket          string `env:"S3_BUCKET" env-default:"financial-statements"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"minio"`
	MinIO  MinIOConfig
	S3     S3Config
}

// LinkConfig controls share-link issuance and validation.
type LinkConfig struct {
	Secret         string        `env:"LINK_SECRET"`
	DefaultTTL     time.Duration `env:"LINK_DEFAULT_TTL" env-default:"4h"`
	MaxTTL         time.Duration `env:"LINK_MAX_TTL" env-default:"720h"`
	TokenWindow    time.Duration `env:"LINK_TOKEN_WINDOW" env-default:"1h"`
	CacheMaxAge    time.Duration `env:"LINK_CACHE_MAX_AGE" env-default:"120s"`
	LegacyPathOpen bool          `env:"LEGACY_PATH_ACCESS" env-default:"false"`
}

// AuthConfig controls session tokens and the bootstrap super admin.
type AuthConfig struct {
	SessionSecret          string        `env:"SESSION_SECRET"`
	SessionTTL             time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CookieName             string        `env:"SESSION_COOKIE" env-default:"statement_session"`
	CookieSecure           bool          `env:"SESSION_COOKIE_SECURE" env-default:"false"`
	BootstrapAdminEmail    string        `env:"BOOTSTRAP_SUPER_ADMIN_EMAIL"`
	BootstrapAdminPassword string        `env:"BOOTSTRAP_SUPER_ADMIN_PASSWORD"`
}

// MailConfig holds SMTP settings. An empty Host disables mail.
type MailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"no-reply@localhost"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env            string   `env:"APP_ENV" env-default:"development"`
	AppHost        string   `env:"APP_HOST" env-default:"localhost:8080"`
	Port           string   `env:"PORT" env-default:"8080"`
	PublicBaseURL  string   `env:"PUBLIC_BASE_URL"`
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" env-separator:","`
	LogLevel       string   `env:"LOG_LEVEL" env-default:"info"`
	Database       DatabaseConfig
	Storage        StorageConfig
	Links          LinkConfig
	Auth           AuthConfig
	Mail           MailConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LinkSecret returns the configured link secret or the built-in fallback.
func (c *AppConfig) LinkSecret() string {
	if c.Links.Secret == "" {
		return DefaultLinkSecret
	}
	return c.Links.Secret
}

// Validate checks settings that must hold before the server starts.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.Links.Secret == "" {
			errs = append(errs, errors.New("LINK_SECRET is required in production"))
		}
		if c.Auth.SessionSecret == "" {
			errs = append(errs, errors.New("SESSION_SECRET is required in production"))
		}
	}
	if c.Links.TokenWindow <= 0 {
		errs = append(errs, errors.New("LINK_TOKEN_WINDOW must be positive"))
	}
	if c.Links.DefaultTTL <= 0 || c.Links.MaxTTL < c.Links.DefaultTTL {
		errs = append(errs, errors.New("LINK_DEFAULT_TTL must be positive and not exceed LINK_MAX_TTL"))
	}
	switch c.Storage.Driver {
	case "minio", "s3":
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// SessionKey returns the session signing key, deriving a development key from
// the link secret when SESSION_SECRET is unset.
func (c *AppConfig) SessionKey() []byte {
	if c.Auth.SessionSecret != "" {
		return []byte(c.Auth.SessionSecret)
	}
	return []byte(c.LinkSecret() + "-session")
}
