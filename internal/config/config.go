package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// Server
	Port           int           `env:"PORT" envDefault:"9090"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,https://nano-tasker.web.app"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	// Credentials
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"taskcoin"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`

	// Payment: Stripe
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `env:"PAYMENT_CURRENCY" envDefault:"usd"`

	// Ledger policy
	DefaultCoinWorker      int64 `env:"DEFAULT_COIN_WORKER" envDefault:"10"`
	DefaultCoinTaskCreator int64 `env:"DEFAULT_COIN_TASK_CREATOR" envDefault:"50"`
	AllowNegativeBalance   bool  `env:"ALLOW_NEGATIVE_BALANCE" envDefault:"false"`
	UniqueSubmissions      bool  `env:"UNIQUE_SUBMISSIONS" envDefault:"false"`

	// Telegram ops logging
	TelegramBotToken         string `env:"TELEGRAM_BOT_TOKEN"`
	LogTelegramChatID        int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError            int    `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration     int    `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicPayment          int    `env:"LOG_TOPIC_PAYMENT"`
	LogTopicWithdrawal       int    `env:"LOG_TOPIC_WITHDRAWAL"`
	LogTopicSubmissionReview int    `env:"LOG_TOPIC_SUBMISSION_REVIEW"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLen)
	}
	if c.DefaultCoinWorker < 0 || c.DefaultCoinTaskCreator < 0 {
		return fmt.Errorf("default coin balances must not be negative")
	}
	return nil
}

// TelegramLoggingEnabled reports whether ops events should be posted.
func (c *Config) TelegramLoggingEnabled() bool {
	return c.TelegramBotToken != "" && c.LogTelegramChatID != 0
}
