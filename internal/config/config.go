package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	BotToken   string
	PublicURL  string
	WebAppURL  string
	ListenAddr string

	// CIDR ranges allowed to call the webhook endpoint. Empty disables the
	// check. Defaults to Telegram's published bot API ranges.
	AllowedWebhookCIDRs []string

	Rewards Rewards
}

// Rewards holds the crediting constants. It is built once at startup and
// passed by value, never mutated afterwards.
type Rewards struct {
	DailyAdLimit      int
	AdIncome          float64
	ReferralBonus     float64
	MinWithdrawPoints int
	AdTokenTTL        time.Duration
}

func LoadConfig() *Config {
	// Missing .env is fine, system environment is authoritative.
	_ = godotenv.Load()

	return &Config{
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "earnquick"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		PublicURL:  getEnv("PUBLIC_URL", ""),
		WebAppURL:  getEnv("WEB_APP_URL", ""),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		AllowedWebhookCIDRs: getEnvList("WEBHOOK_ALLOWED_CIDRS", []string{
			"149.154.160.0/20",
			"91.108.4.0/22",
		}),

		Rewards: Rewards{
			DailyAdLimit:      getEnvInt("DAILY_AD_LIMIT", 10),
			AdIncome:          getEnvFloat("AD_INCOME", 20.00),
			ReferralBonus:     getEnvFloat("REFERRAL_BONUS", 5.00),
			MinWithdrawPoints: getEnvInt("MIN_WITHDRAW_POINTS", 50000),
			AdTokenTTL:        getEnvDuration("AD_TOKEN_TTL", time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
