package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	MongoURI          string
	MongoDatabase     string
	StoreCollection   string
	AuditCollection   string
	Timeout           time.Duration
	Timezone          string
	ServerLog         *log.Logger
	JWTConfigs        []JWTConfig
	JWTAudience       string
	AllowedOrigins    []string
	WatermarkEndpoint string
	WatermarkTimeout  time.Duration
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	watermarkEndpoint := strings.TrimSpace(os.Getenv("WATERMARK_SERVICE_URL"))
	if watermarkEndpoint == "" {
		watermarkEndpoint = "http://watermark-gateway:3000"
	}

	watermarkTimeout := 20 * time.Second
	if raw := strings.TrimSpace(os.Getenv("WATERMARK_SERVICE_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			watermarkTimeout = parsed
		}
	}

	allowedOrigins := parseList("API_ALLOWED_ORIGINS", []string{"*"})

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_FIELD_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_FIELD_JWT_ISSUER", "field-audit-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_ADMIN_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_ADMIN_JWT_ISSUER", "auth-admin"),
			Secret: []byte(secret),
		})
	}

	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secrets not configured. Set AUTH_FIELD_JWT_SECRET or AUTH_ADMIN_JWT_SECRET.")
	}

	jwtAudience := strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))

	cfg := Config{
		Addr:              envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:          envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:     envOrDefault("MONGO_DB", "field-audit"),
		StoreCollection:   envOrDefault("STORE_COLLECTION", "stores"),
		AuditCollection:   envOrDefault("AUDIT_COLLECTION", "audits"),
		Timeout:           timeout,
		Timezone:          envOrDefault("TIMEZONE", "Asia/Tokyo"),
		ServerLog:         log.New(os.Stdout, "[field-audit-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:        jwtConfigs,
		JWTAudience:       jwtAudience,
		AllowedOrigins:    allowedOrigins,
		WatermarkEndpoint: watermarkEndpoint,
		WatermarkTimeout:  watermarkTimeout,
	}

	cfg.ServerLog.Printf("loaded config: addr=%q db=%q watermarkEndpoint=%q", cfg.Addr, cfg.MongoDatabase, watermarkEndpoint)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
