package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vnfurniture/internal/logger"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env     string
	Port    string
	BaseURL string

	StoreDriver   string
	StorageDriver string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string
	ScyllaCAPath   string

	DatabaseURL string

	RedisHost     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	MinioPublicURL string

	JWTSecret     string
	SessionSecret string
	AdminEmails   []string

	UPIPayeeAddress string
	UPIPayeeName    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	CORSOrigins []string
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Info("⚠️ no .env file found, using system environment")
	} else {
		logger.Log.Info("✅ .env loaded")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	cfg := &Config{
		Env:     getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "scylla")),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),

		ScyllaHosts:    splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "storefront"),
		ScyllaUsername: os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaCAPath:   os.Getenv("SCYLLA_SSL_CA_PATH"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true"),
		MinioBucket:    getEnv("MINIO_BUCKET", "products"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AdminEmails:   splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),

		UPIPayeeAddress: getEnv("UPI_PAYEE_ADDRESS", "vnfurniture@upi"),
		UPIPayeeName:    getEnv("UPI_PAYEE_NAME", "VN Furniture"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@vnfurniture.local"),

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.JWTSecret == "" {
		logger.Log.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-jwt-secret"
	}
	if cfg.SessionSecret == "" {
		logger.Log.Warn("SESSION_SECRET not set, using an insecure development secret")
		cfg.SessionSecret = "dev-session-secret-change-me-now"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.BaseURL}
	}

	logger.Log.Debug("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("storage_driver", cfg.StorageDriver))
	return cfg
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Log.Warn("invalid integer in environment, using default",
			zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
