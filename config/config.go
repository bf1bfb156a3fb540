package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"landlord_docs_app_go/legal"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Turso (libsql) replaces the local sqlite file when set
	TursoDatabaseURL string
	TursoAuthToken   string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	// Other
	AllowedOrigins  []string
	AppURL          string
	AdminAPIKeyHash string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Document rendering
	ChromePath        string
	RenderConcurrency int
	// Legal rules
	Section21AbolitionDate legal.Date
	// Retention
	PreviewRetentionHours int
	DraftRetentionDays    int
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	adminHash := getEnv("ADMIN_API_KEY_HASH", "")
	ValidateAdminKeyHash(adminHash, environment)

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		DBPath:                 getEnv("DB_PATH", "db/app.db"),
		Environment:            environment,
		UploadDir:              getEnv("UPLOAD_DIR", "static/uploads"),
		TursoDatabaseURL:       getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:         os.Getenv("TURSO_AUTH_TOKEN"),
		ResendAPIKey:           os.Getenv("RESEND_API_KEY"),
		EmailFrom:              getEnv("EMAIL_FROM", "documents@landlorddocs.co.uk"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "Landlord Docs"),
		EmailTestMode:          getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                 getEnv("APP_URL", "http://localhost:8080"),
		AdminAPIKeyHash:        adminHash,
		R2AccountID:            getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:          getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:      os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:           getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:            getEnv("R2_PUBLIC_URL", ""),
		ChromePath:             getEnv("CHROME_PATH", ""),
		RenderConcurrency:      getEnvInt("RENDER_CONCURRENCY", 3),
		Section21AbolitionDate: getEnvDate("SECTION21_ABOLITION_DATE"),
		PreviewRetentionHours:  getEnvInt("PREVIEW_RETENTION_HOURS", 24),
		DraftRetentionDays:     getEnvInt("DRAFT_RETENTION_DAYS", 30),
	}
}

// UseR2 reports whether all Cloudflare R2 settings are present
func (c *Config) UseR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("[WARNING] %s=%q is not a positive integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDate reads a YYYY-MM-DD date; unset or invalid values give the zero date
func getEnvDate(key string) legal.Date {
	value := os.Getenv(key)
	if value == "" {
		return legal.Date{}
	}
	d, err := legal.ParseDate(value)
	if err != nil {
		log.Printf("[WARNING] %s: %v, ignoring", key, err)
		return legal.Date{}
	}
	return d
}

// ValidateAdminKeyHash checks the admin API key hash looks like a bcrypt hash.
// Production refuses to start without one; other environments run with admin routes disabled.
func ValidateAdminKeyHash(hash string, environment string) {
	if hash == "" {
		if environment == "production" {
			log.Fatal("[CRITICAL] ADMIN_API_KEY_HASH must be set in production. Generate with: htpasswd -bnBC 12 \"\" <key> | tr -d ':'")
		}
		log.Printf("[WARNING] ADMIN_API_KEY_HASH is not set; admin endpoints will reject every request.")
		return
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") && !strings.HasPrefix(hash, "$2y$") {
		if environment == "production" {
			log.Fatal("[CRITICAL] ADMIN_API_KEY_HASH is not a bcrypt hash")
		}
		log.Printf("[WARNING] ADMIN_API_KEY_HASH is not a bcrypt hash; admin endpoints will reject every request.")
	}
}
