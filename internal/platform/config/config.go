package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	MigrationsPath    string
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Rate limits in ulule/limiter format, e.g. "100-M".
	RateLimit      string
	LoginRateLimit string

	CORSAllowedOrigins []string

	// Idempotency store; empty RedisAddr disables the idempotency middleware.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration

	PosthogAPIKey   string
	PosthogEndpoint string

	// Domain events go to SNS when SNSTopicARN is set, to the log otherwise.
	AWSRegion   string
	SNSTopicARN string

	// Funding fee schedule, in percent, and settlement currency.
	ProcessorFeePercent       decimal.Decimal
	ProcessorFeeFixed         decimal.Decimal
	PlatformCommissionPercent decimal.Decimal
	PaymentCurrency           string

	// Send buffer per chat connection, in frames.
	ChatSendBuffer int

	// Admin account created at startup when both are set.
	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "trustbridge")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("SNS_TOPIC_ARN", "")
	viper.SetDefault("PAYMENT_PROCESSOR_FEE_PERCENT", "2.9")
	viper.SetDefault("PAYMENT_PROCESSOR_FEE_FIXED", "0.30")
	viper.SetDefault("PLATFORM_COMMISSION_PERCENT", "5")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")
	viper.SetDefault("CHAT_SEND_BUFFER", 64)
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD", "")

	// Environment variables override both the defaults and the .env file.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = parseDuration("JWT_EXPIRY_DURATION", time.Hour)
	cfg.IdempotencyTTL = parseDuration("IDEMPOTENCY_TTL", 24*time.Hour)

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "trustbridge"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.ProcessorFeePercent = parseDecimal("PAYMENT_PROCESSOR_FEE_PERCENT", decimal.RequireFromString("2.9"))
	cfg.ProcessorFeeFixed = parseDecimal("PAYMENT_PROCESSOR_FEE_FIXED", decimal.RequireFromString("0.30"))
	cfg.PlatformCommissionPercent = parseDecimal("PLATFORM_COMMISSION_PERCENT", decimal.NewFromInt(5))

	cfg.PaymentCurrency = strings.ToLower(viper.GetString("PAYMENT_CURRENCY"))
	if len(cfg.PaymentCurrency) != 3 {
		log.Printf("Warning: Invalid value for PAYMENT_CURRENCY ('%s'). Defaulting to usd.\n", cfg.PaymentCurrency)
		cfg.PaymentCurrency = "usd"
	}

	cfg.ChatSendBuffer = viper.GetInt("CHAT_SEND_BUFFER")
	if cfg.ChatSendBuffer <= 0 {
		log.Printf("Warning: Invalid value for CHAT_SEND_BUFFER (%d). Defaulting to 64.\n", cfg.ChatSendBuffer)
		cfg.ChatSendBuffer = 64
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Idempotency keys will not be enforced.")
	}
	cfg.SNSTopicARN = viper.GetString("SNS_TOPIC_ARN")
	if cfg.SNSTopicARN == "" {
		log.Println("Warning: SNS_TOPIC_ARN not set. Domain events will only be logged.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.AWSRegion = viper.GetString("AWS_REGION")
	cfg.AdminEmail = viper.GetString("ADMIN_EMAIL")
	cfg.AdminPassword = viper.GetString("ADMIN_PASSWORD")

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func parseDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		return fallback
	}
	return d
}
