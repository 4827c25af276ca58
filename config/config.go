package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port int `env:"PORT" envDefault:"3333"`

	DBUsername string `env:"DB_USERNAME,required,notEmpty"`
	DBPassword string `env:"DB_PASSWORD,required,notEmpty"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"social"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort string `env:"REDIS_PORT" envDefault:"6379"`

	JWTSecret          string `env:"JWT_SECRET,required,notEmpty"`
	TokenExpiryMinutes int    `env:"TOKEN_EXPIRY_MINUTES" envDefault:"10080"`

	FeedCacheTTLMinutes       int `env:"FEED_CACHE_TTL_MINUTES" envDefault:"5"`
	PresenceTTLSeconds        int `env:"PRESENCE_TTL_SECONDS" envDefault:"60"`
	NotificationRetentionDays int `env:"NOTIFICATION_RETENTION_DAYS" envDefault:"30"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s sslmode=disable host=%s port=%s",
		c.DBUsername,
		c.DBPassword,
		c.DBName,
		c.DBHost,
		c.DBPort,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
