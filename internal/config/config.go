package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        int
	DatabaseURL string
	DBMaxConns  int32

	LogLevel  string
	LogFormat string

	JWTSecret  string
	SessionTTL time.Duration
	RedisAddr  string

	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	AttachmentsBucket string
	SignedURLTTL      time.Duration

	AdminEmail    string
	AdminPassword string

	ChromePath  string
	CompanyName string
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads envPath into the process environment when it exists, then
// resolves every key from the environment with defaults. Variables already
// set in the environment win over the file.
func LoadFile(envPath string) (Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envPath, err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Port:              v.GetInt("PORT"),
		DatabaseURL:       strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBMaxConns:        v.GetInt32("DB_MAX_CONNS"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		RedisAddr:         strings.TrimSpace(v.GetString("REDIS_ADDR")),
		S3Endpoint:        strings.TrimSpace(v.GetString("S3_ENDPOINT")),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		AttachmentsBucket: v.GetString("ATTACHMENTS_BUCKET"),
		SignedURLTTL:      v.GetDuration("SIGNED_URL_TTL"),
		AdminEmail:        strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		ChromePath:        v.GetString("CHROME_PATH"),
		CompanyName:       v.GetString("COMPANY_NAME"),
	}

	if cfg.Port <= 0 {
		return Config{}, fmt.Errorf("invalid PORT: %q", v.GetString("PORT"))
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required (environment variable or .env)")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL: %q", v.GetString("SESSION_TTL"))
	}
	if cfg.SignedURLTTL <= 0 {
		return Config{}, fmt.Errorf("invalid SIGNED_URL_TTL: %q", v.GetString("SIGNED_URL_TTL"))
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 20)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "")

	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("ATTACHMENTS_BUCKET", "attachments")
	v.SetDefault("SIGNED_URL_TTL", "1h")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("COMPANY_NAME", "Contracting")
}
