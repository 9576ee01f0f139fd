package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port int `env:"PORT" envDefault:"8080"`
	}

	Telegram struct {
		BotToken      string  `env:"BOT_TOKEN,required"`
		AdminIDs      []int64 `env:"ADMIN_IDS" envSeparator:","`
		WebhookURL    string  `env:"WEBHOOK_URL" envDefault:""`
		WebhookSecret string  `env:"WEBHOOK_SECRET" envDefault:""`
	}

	// Storage selects the persistence backend: "sqlite" or "redis".
	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"giveaways.db"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Counter struct {
		Interval time.Duration `env:"COUNTER_INTERVAL" envDefault:"30s"`
	}

	// EligibilityDelay paces the subscription check after a participate
	// tap so the check does not feel instantaneous to the user.
	EligibilityDelay time.Duration `env:"ELIGIBILITY_DELAY" envDefault:"2s"`
}

// IsAdmin reports whether the user id belongs to a configured admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func Load() *Config {
	// a missing .env file is fine; production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
