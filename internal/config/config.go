// Package config loads application configuration from the environment.  A
// .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable named by its mapstructure tag.
type Config struct {
	Env     string `mapstructure:"ENV"`      // development | production
	Port    string `mapstructure:"APP_PORT"` // HTTP port to listen on
	SiteURL string `mapstructure:"SITE_URL"` // public origin used in redirect and calendar links

	DBUser    string `mapstructure:"DB_USER"`
	DBPass    string `mapstructure:"DB_PASS"`
	DBHost    string `mapstructure:"DB_HOST"`
	DBPort    string `mapstructure:"DB_PORT"`
	DBName    string `mapstructure:"DB_NAME"`
	DBMigrate bool   `mapstructure:"DB_MIGRATE"` // apply goose migrations on startup

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `mapstructure:"CURRENCY"`

	ResendAPIKey   string `mapstructure:"RESEND_API_KEY"`
	MailFrom       string `mapstructure:"MAIL_FROM"`
	MailInternalTo string `mapstructure:"MAIL_INTERNAL_TO"`

	CSRFSecret      string `mapstructure:"CSRF_SECRET"`
	TurnstileSecret string `mapstructure:"TURNSTILE_SECRET"`

	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	AccessTTLMin      int    `mapstructure:"ACCESS_TOKEN_TTL_MIN"`

	EventLocation string `mapstructure:"EVENT_LOCATION"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RemindersEnabled bool   `mapstructure:"REMINDERS_ENABLED"`

	Redis     RedisConfig     `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Cache     CacheConfig     `mapstructure:",squash"`
}

var defaults = map[string]any{
	"ENV":                   "development",
	"APP_PORT":              "8080",
	"SITE_URL":              "http://localhost:3000",
	"DB_USER":               "",
	"DB_PASS":               "",
	"DB_HOST":               "",
	"DB_PORT":               "3306",
	"DB_NAME":               "",
	"DB_MIGRATE":            true,
	"STRIPE_SECRET_KEY":     "",
	"STRIPE_WEBHOOK_SECRET": "",
	"CURRENCY":              "gbp",
	"RESEND_API_KEY":        "",
	"MAIL_FROM":             "Better Wealth <onboarding@resend.dev>",
	"MAIL_INTERNAL_TO":      "info@better-wealth.co.uk",
	"CSRF_SECRET":           "",
	"TURNSTILE_SECRET":      "",
	"JWT_SECRET":            "",
	"ADMIN_EMAIL":           "",
	"ADMIN_PASSWORD_HASH":   "",
	"ACCESS_TOKEN_TTL_MIN":  60,
	"EVENT_LOCATION":        "Cortland by Colliers Yard, Salford, Manchester",
	"RABBITMQ_URL":          "",
	"REMINDERS_ENABLED":     false,
}

// Load reads .env (if any) and the process environment into a Config.  It
// returns an error when a required database variable is missing.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	setRedisDefaults(v)
	setRateLimitDefaults(v)
	setCacheDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	var missing []string
	for key, val := range map[string]string{"DB_USER": cfg.DBUser, "DB_HOST": cfg.DBHost, "DB_NAME": cfg.DBName} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Config{}, fmt.Errorf("missing required env var(s): %s", strings.Join(missing, ", "))
	}

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.Currency = strings.ToLower(cfg.Currency)
	cfg.RateLimit.normalize()
	cfg.Cache.normalize()
	return cfg, nil
}

// IsProduction reports whether ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
