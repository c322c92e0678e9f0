package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries everything the server needs from the environment.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	// Token lifetimes in seconds.
	AccessTokenTTL  int
	RefreshTokenTTL int

	// Identity provider (OAuth2 + JWKS)
	IdentityAuthURL      string
	IdentityTokenURL     string
	IdentityJWKSURL      string
	IdentityLogoutURL    string
	IdentityClientID     string
	IdentityClientSecret string
	IdentityRedirectURL  string
	IdentityScopes       []string

	// Object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	LogoBucket     string

	AllowedOrigins []string
}

// Load reads configuration from the environment. DATABASE_URL is the
// only hard requirement; everything else has a development default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvInt("ACCESS_TOKEN_TTL", 3600),
		RefreshTokenTTL: getEnvInt("REFRESH_TOKEN_TTL", 30*24*3600),

		IdentityAuthURL:      getEnv("IDENTITY_AUTH_URL", ""),
		IdentityTokenURL:     getEnv("IDENTITY_TOKEN_URL", ""),
		IdentityJWKSURL:      getEnv("IDENTITY_JWKS_URL", ""),
		IdentityLogoutURL:    getEnv("IDENTITY_LOGOUT_URL", ""),
		IdentityClientID:     getEnv("IDENTITY_CLIENT_ID", ""),
		IdentityClientSecret: getEnv("IDENTITY_CLIENT_SECRET", ""),
		IdentityRedirectURL:  getEnv("IDENTITY_REDIRECT_URL", "http://localhost:8080/v1/auth/oauth/callback"),
		IdentityScopes:       getEnvSlice("IDENTITY_SCOPES", []string{"openid", "email"}),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		LogoBucket:     getEnv("LOGO_BUCKET", "ptime-logos"),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
