package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/media/s3store"
	"github.com/aussiebroadwan/vidtab/pkg/cryptox"
	"github.com/aussiebroadwan/vidtab/pkg/jwtx"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Media drivers.
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	CORSOrigin          string        // Comma separated allowed origins (default: *)

	Issuer             string        // Issuer claim for tokens (default: vidtab-accounts)
	AccessTokenSecret  string        // Required
	AccessTokenExpiry  time.Duration // default: 15m
	RefreshTokenSecret string        // Required, must differ from the access secret
	RefreshTokenExpiry time.Duration // default: 240h
	BcryptCost         int           // default: 10

	DatabaseDriver string // sqlite, postgres or mongo (default: sqlite)
	DatabaseURL    string // sqlite file, postgres DSN or mongodb URI
	DatabaseName   string // mongo database (default: vidtab)

	MediaDriver        string // local or s3 (default: local)
	MediaLocalDir      string // default: ./public/media
	MediaPublicBaseURL string // URL prefix of locally stored files
	S3                 s3store.Config
	MaxUploadBytes     int64 // default: 8 MiB
}

func LoadConfig() Config {
	cfg := Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		CORSOrigin:          getEnvOrDefault("CORS_ORIGIN", "*"),

		Issuer:             getEnvOrDefault("TOKEN_ISSUER", "vidtab-accounts"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  getEnvDurationOrDefault("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry: getEnvDurationOrDefault("REFRESH_TOKEN_EXPIRY", 240*time.Hour),
		BcryptCost:         getEnvIntOrDefault("BCRYPT_COST", cryptox.DefaultCost),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "file:vidtab.db"),
		DatabaseName:   getEnvOrDefault("DB_NAME", "vidtab"),

		MediaDriver:        strings.ToLower(getEnvOrDefault("MEDIA_DRIVER", MediaLocal)),
		MediaLocalDir:      getEnvOrDefault("MEDIA_LOCAL_DIR", "./public/media"),
		MediaPublicBaseURL: getEnvOrDefault("MEDIA_PUBLIC_BASE_URL", "http://localhost:8000/media"),
		S3: s3store.Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 8<<20)),
	}

	// Objects are served straight from the bucket unless told otherwise.
	cfg.S3.PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")

	return cfg
}

// Validate reports every problem at once so a misconfigured deployment
// fails with the full list.
func (c Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	for name, secret := range map[string]string{
		"ACCESS_TOKEN_SECRET":  c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET": c.RefreshTokenSecret,
	} {
		if secret != "" && len(secret) < jwtx.MinSecretLength {
			errs = append(errs, fmt.Errorf("%s must be at least %d bytes", name, jwtx.MinSecretLength))
		}
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY must be positive"))
	}
	if !cryptox.ValidCost(c.BcryptCost) {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d is out of range", c.BcryptCost))
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	switch c.MediaDriver {
	case MediaLocal:
	case MediaS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 media driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_DRIVER %q", c.MediaDriver))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// CORSOrigins splits CORSOrigin into the allowed origin list.
func (c Config) CORSOrigins() []string {
	var origins []string
	for o := range strings.SplitSeq(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
