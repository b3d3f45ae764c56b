package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	Port             string
	IsProduction     bool
	DBConnectTimeout time.Duration

	// Application tokens
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	SessionCookieName string
	AdminSubjects     []string

	// Donation drafts survive the identity redirect in a signed cookie.
	DraftSecret     string
	DraftRetention  time.Duration
	DraftCookieName string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`
	IdentityLoginPath  string

	// Payments
	StripeSecretKey       string
	StripeWebhookSecret   string
	DonationCurrency      string
	CheckoutSuccessURL    string
	CheckoutCancelURL     string
	CheckoutRateLimit     string
	ReconciliationEpsilon decimal.Decimal

	// Observability and operator tooling
	PosthogAPIKey       string
	PosthogEndpoint     string
	ReportArchiveBucket string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "academy-sponsorship")
	viper.SetDefault("SESSION_COOKIE_NAME", "sid")
	viper.SetDefault("ADMIN_SUBJECTS", "")
	viper.SetDefault("DRAFT_SECRET", "")
	viper.SetDefault("DRAFT_RETENTION", "2h")
	viper.SetDefault("DRAFT_COOKIE_NAME", "donation_draft")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("IDENTITY_LOGIN_PATH", "/auth/google/login")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("DONATION_CURRENCY", "eur")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", "")
	viper.SetDefault("CHECKOUT_CANCEL_URL", "")
	viper.SetDefault("CHECKOUT_RATE_LIMIT", "20-M")
	viper.SetDefault("RECONCILIATION_EPSILON", "1.00")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("REPORT_ARCHIVE_BUCKET", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.DBConnectTimeout = durationOrDefault("DB_CONNECT_TIMEOUT", 30*time.Second)

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.SessionCookieName = viper.GetString("SESSION_COOKIE_NAME")
	cfg.AdminSubjects = splitList(viper.GetString("ADMIN_SUBJECTS"))
	if len(cfg.AdminSubjects) == 0 {
		log.Println("Warning: ADMIN_SUBJECTS not set. Reconciliation endpoints will reject every caller.")
	}

	cfg.DraftSecret = viper.GetString("DRAFT_SECRET")
	if cfg.DraftSecret == "" {
		// Drafts are not credentials, but they must not be forgeable either.
		cfg.DraftSecret = cfg.JWTSecret
		log.Println("Warning: DRAFT_SECRET not set. Falling back to JWT_SECRET.")
	}
	cfg.DraftRetention = durationOrDefault("DRAFT_RETENTION", 2*time.Hour)
	cfg.DraftCookieName = viper.GetString("DRAFT_COOKIE_NAME")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = strings.TrimRight(viper.GetString("FRONTEND_BASE_URL"), "/")
	cfg.IdentityLoginPath = viper.GetString("IDENTITY_LOGIN_PATH")
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth is not fully configured. Identified donations will not work.")
	}

	cfg.StripeSecretKey = viper.GetString("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set. Checkout sessions cannot be created.")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET not set. Payment webhooks will be rejected.")
	}
	cfg.DonationCurrency = strings.ToLower(viper.GetString("DONATION_CURRENCY"))
	cfg.CheckoutSuccessURL = viper.GetString("CHECKOUT_SUCCESS_URL")
	if cfg.CheckoutSuccessURL == "" {
		cfg.CheckoutSuccessURL = cfg.FrontendBaseURL + "/donate/complete?session_id={CHECKOUT_SESSION_ID}"
	}
	cfg.CheckoutCancelURL = viper.GetString("CHECKOUT_CANCEL_URL")
	if cfg.CheckoutCancelURL == "" {
		cfg.CheckoutCancelURL = cfg.FrontendBaseURL + "/donate"
	}
	cfg.CheckoutRateLimit = viper.GetString("CHECKOUT_RATE_LIMIT")

	epsilonStr := viper.GetString("RECONCILIATION_EPSILON")
	epsilon, err := decimal.NewFromString(epsilonStr)
	if err != nil || epsilon.IsNegative() {
		epsilon = decimal.NewFromInt(1)
		log.Printf("Warning: Invalid value for RECONCILIATION_EPSILON ('%s'). Defaulting to %s.\n", epsilonStr, epsilon.String())
	}
	cfg.ReconciliationEpsilon = epsilon

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.ReportArchiveBucket = viper.GetString("REPORT_ARCHIVE_BUCKET")

	return cfg, nil
}

// durationOrDefault reads key as a duration (e.g. "60m", "2h"), warning on bad values.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
