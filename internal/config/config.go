package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	SessionStore  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string

	WhatsAppBaseURL       string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string

	PortalAPIURL     string
	PortalAPIKey     string
	PortalMaxRetries int
	PortalTimeout    time.Duration

	GeminiAPIKey  string
	GeminiModelID string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AdminEmail        string

	AdminChatID     string
	AdminJWTSecret  string
	AdminContactURL string

	CORSAllowedOrigins []string

	// Requests per second per IP on the public calculate endpoint.
	CalculateRateLimit float64

	// Rate fallback used when the bank_rates table has no covering row.
	DefaultLenderName string
	DefaultRate       float64
	SmallLoanRate     float64
	SmallLoanCutoff   float64

	// Lead policy.
	MinLifetimeSavings      float64
	SubmitDisqualifiedLeads bool

	// Referral onboarding policy.
	ReferralRequired    bool
	ReferralPrefix      string
	ReferralDefaultCode string

	OutboundTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SessionStore:  strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		WhatsAppBaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0"),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),

		PortalAPIURL:     getEnv("PORTAL_API_URL", "https://qaichatbot.chat/api/leads"),
		PortalAPIKey:     strings.TrimSpace(getEnv("LEADS_API_KEY", "")),
		PortalMaxRetries: getEnvAsInt("PORTAL_MAX_RETRIES", 3),
		PortalTimeout:    getEnvAsDuration("PORTAL_TIMEOUT", 8*time.Second),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Quantify AI"),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),

		AdminChatID:     getEnv("ADMIN_CHAT_ID", ""),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		AdminContactURL: getEnv("ADMIN_CONTACT_URL", "https://wa.me/60126181683"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		CalculateRateLimit: getEnvAsFloat("CALCULATE_RATE_LIMIT", 5),

		DefaultLenderName: getEnv("DEFAULT_LENDER_NAME", "OCBC Bank"),
		DefaultRate:       getEnvAsFloat("DEFAULT_RATE", 3.8),
		SmallLoanRate:     getEnvAsFloat("SMALL_LOAN_RATE", 4.05),
		SmallLoanCutoff:   getEnvAsFloat("SMALL_LOAN_CUTOFF", 300000),

		MinLifetimeSavings:      getEnvAsFloat("MIN_LIFETIME_SAVINGS", 10000),
		SubmitDisqualifiedLeads: getEnvAsBool("SUBMIT_DISQUALIFIED_LEADS", false),

		ReferralRequired:    getEnvAsBool("REFERRAL_REQUIRED", false),
		ReferralPrefix:      getEnv("REFERRAL_PREFIX", "REF"),
		ReferralDefaultCode: getEnv("REFERRAL_DEFAULT_CODE", "NOREF"),

		OutboundTimeout: getEnvAsDuration("OUTBOUND_TIMEOUT", 8*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, dropping
// empty entries.
func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
