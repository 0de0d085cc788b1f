package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string // ENV: production, development, test
	Port        string
	LogLevel    string

	StoreDriver       string // mongo | memory
	MongoURI          string
	MongoTransactions bool
	PostgresURI       string
	RedisURI          string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieDomain string
	OTPTTL       time.Duration

	// OwnershipStrict makes comment and post edits owner-only.
	OwnershipStrict bool

	FrontendURL    string
	AllowedOrigins []string // from ALLOWED_ORIGINS, else FRONTEND_URL

	AssetDriver string // cloudinary | minio | memory
	Cloudinary  CloudinaryConfig
	Minio       MinioConfig

	SMTP SMTPConfig
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is set to actually send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = parseOrigins(getEnv("FRONTEND_URL", "http://localhost:3000"))
	}

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:          getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/socialapp")),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", false),
		PostgresURI:       getEnv("POSTGRES_URI", "postgres://localhost:5432/socialapp?sslmode=disable"),
		RedisURI:          getEnv("REDIS_URI", "redis://localhost:6379/0"),

		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:     getDuration("TOKEN_TTL", 7*24*time.Hour),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		OTPTTL:       getDuration("OTP_TTL", 5*time.Minute),

		OwnershipStrict: strings.ToLower(getEnv("OWNERSHIP_MODE", "strict")) != "lenient",

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,

		AssetDriver: strings.ToLower(getEnv("ASSET_DRIVER", "cloudinary")),
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "socialapp"),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "socialapp"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
		},
	}
}

// Validate catches settings that would misbehave at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q: want mongo or memory", c.StoreDriver))
	}

	switch c.AssetDriver {
	case "cloudinary":
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			errs = append(errs, errors.New("cloudinary credentials are required when ASSET_DRIVER=cloudinary"))
		}
	case "minio":
		if c.Minio.Endpoint == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT is required when ASSET_DRIVER=minio"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("ASSET_DRIVER %q: want cloudinary, minio or memory", c.AssetDriver))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
		}
		if c.StoreDriver == "memory" || c.AssetDriver == "memory" {
			errs = append(errs, errors.New("memory drivers are not allowed in production"))
		}
	}

	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("15m") or bare seconds ("900").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
