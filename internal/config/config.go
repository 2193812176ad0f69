package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	FrontendBaseURL string
	CompanyName     string

	SessionTTLHours   int
	InviteTTLDays     int
	CodeTTLMinutes    int
	BcryptCost        int
	BulkUploadMaxRows int

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr        string
	RedisPassword    string
	InviteRatePerMin float64
	InviteBurst      int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "procure"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,

		FrontendBaseURL: strings.TrimRight(getenv("FRONTEND_BASE_URL", "http://localhost:3000"), "/"),
		CompanyName:     getenv("COMPANY_NAME", "Procure"),

		SessionTTLHours:   getenvInt("SESSION_TTL_HOURS", 168),
		InviteTTLDays:     getenvInt("INVITE_TTL_DAYS", 7),
		CodeTTLMinutes:    getenvInt("CODE_TTL_MINUTES", 60),
		BcryptCost:        getenvInt("BCRYPT_COST", 10),
		BulkUploadMaxRows: getenvInt("BULK_UPLOAD_MAX_ROWS", 5000),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "procure"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		InviteRatePerMin: getenvFloat("INVITE_RATE_PER_MIN", 30),
		InviteBurst:      getenvInt("INVITE_BURST", 10),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@procure.local"),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
