// Package config loads application configuration from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage backends.
const (
	BackendDisk  = "disk"
	BackendMinio = "minio"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port         string `env:"PORT,default=8080"`
	AppEnv       string `env:"APP_ENV,default=development"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	PublicScheme string `env:"PUBLIC_SCHEME,default=http" description:"Scheme used in returned file URLs; the host comes from the request"`

	MaxUploadSize   ByteSize      `env:"MAX_UPLOAD_SIZE,default=10MiB" description:"Maximum stored file size (0 = unbounded)"`
	RetentionWindow time.Duration `env:"RETENTION_WINDOW,default=168h"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=1h"`
	UploadTimeout   time.Duration `env:"UPLOAD_TIMEOUT,default=10m"`

	// Optional: enables the audit log when set.
	DatabaseURL string `env:"DATABASE_URL"`
	// Optional: enables the admin endpoints when set.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`

	Storage StorageConfig `env:",prefix=STORAGE_"`
	Server  ServerConfig  `env:",prefix=SERVER_"`
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Backend string `env:"BACKEND,default=disk" description:"disk or minio"`
	Dir     string `env:"DIR,default=file"`

	// S3-compatible object storage (MinIO locally)
	Endpoint  string `env:"ENDPOINT,default=localhost:9000"`
	AccessKey string `env:"ACCESS_KEY,default=minioadmin"`
	SecretKey string `env:"SECRET_KEY,default=minioadmin"`
	Bucket    string `env:"BUCKET,default=filedrop"`
	UseSSL    bool   `env:"USE_SSL,default=false"`
}

// ServerConfig holds HTTP server timeouts.
type ServerConfig struct {
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=10m"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=10m"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=60s"`
}

// ByteSize is a size in bytes decoded from a human string such as "10MiB".
type ByteSize int64

// EnvDecode implements envconfig.Decoder.
func (b *ByteSize) EnvDecode(val string) error {
	n, err := humanize.ParseBytes(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", val, err)
	}
	if n > 1<<62 {
		return fmt.Errorf("size %q is too large", val)
	}
	*b = ByteSize(n)
	return nil
}

// Bytes returns the size as an int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// String renders the size the way it is usually written in the environment.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Load reads configuration from a .env file (if present) and environment
// variables. It reports whether a .env file was found.
func Load(ctx context.Context) (*Config, bool, error) {
	loadedDotenv := godotenv.Load() == nil
	cfg, err := LoadWithLookuper(ctx, envconfig.OsLookuper())
	return cfg, loadedDotenv, err
}

// LoadWithLookuper decodes configuration from lookuper and validates it.
func LoadWithLookuper(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendDisk:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			errs = append(errs, errors.New("STORAGE_DIR is required for the disk backend"))
		}
	case BackendMinio:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			errs = append(errs, errors.New("STORAGE_ENDPOINT and STORAGE_BUCKET are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", c.Storage.Backend, BackendDisk, BackendMinio))
	}
	if c.PublicScheme != "http" && c.PublicScheme != "https" {
		errs = append(errs, fmt.Errorf("PUBLIC_SCHEME must be http or https, got %q", c.PublicScheme))
	}
	if c.RetentionWindow <= 0 {
		errs = append(errs, errors.New("RETENTION_WINDOW must be positive"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must be positive"))
	}
	if c.UploadTimeout < 0 {
		errs = append(errs, errors.New("UPLOAD_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AuditEnabled reports whether lifecycle events are persisted.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

// AdminEnabled reports whether the admin endpoints are mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}
