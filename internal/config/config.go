package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryUploadFolder string

	OTelEndpoint string
	ServiceName  string

	RateLimitOrder   time.Duration
	OrderCacheTTL    time.Duration
	SignedURLTTL     time.Duration
	MaterialSchedule string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@sekolah.id"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "portal_sekolah"),

		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getEnv("SERVICE_NAME", "portal-sekolah"),

		MaterialSchedule: getEnv("MATERIAL_NOTICE_SCHEDULE", "@every 1m"),
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"JWT_TTL", "24h", &cfg.JWTTTL},
		{"RATE_LIMIT_ORDER", "10s", &cfg.RateLimitOrder},
		{"ORDER_CACHE_TTL", "1m", &cfg.OrderCacheTTL},
		{"SIGNED_URL_TTL", "1h", &cfg.SignedURLTTL},
	}
	for _, d := range durations {
		v, err := parseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
