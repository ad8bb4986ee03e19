package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name     string `mapstructure:"NAME"`
		Port     string `mapstructure:"PORT"`
		LogLevel string `mapstructure:"LOG_LEVEL"`
	} `mapstructure:"APP"`

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		} `mapstructure:"POSTGRES"`
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
			DB       int    `mapstructure:"DB"`
		} `mapstructure:"REDIS"`
		Mongo struct {
			Url        string `mapstructure:"URL"`
			Database   string `mapstructure:"DATABASE"`
			Collection string `mapstructure:"COLLECTION"`
		} `mapstructure:"MONGO"`
	} `mapstructure:"DATABASE"`

	RECAPTCHA struct {
		Secret   string        `mapstructure:"SECRET"`
		URL      string        `mapstructure:"URL"`
		Timeout  time.Duration `mapstructure:"TIMEOUT"`
		MinScore float64       `mapstructure:"MIN_SCORE"`
	} `mapstructure:"RECAPTCHA"`

	CACHE struct {
		RoomTTL time.Duration `mapstructure:"ROOM_TTL"`
	} `mapstructure:"CACHE"`

	WORKER struct {
		Count int `mapstructure:"COUNT"`
	} `mapstructure:"WORKER"`

	MAIL struct {
		SMTPHost string `mapstructure:"SMTP_HOST"`
		SMTPPort int    `mapstructure:"SMTP_PORT"`
		Username string `mapstructure:"USERNAME"`
		Password string `mapstructure:"PASSWORD"`
		From     string `mapstructure:"FROM"`
	} `mapstructure:"MAIL"`
}

var Conf *AppConfig

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sajilo-rooms")
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.postgres.url", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.mongo.url", "")
	v.SetDefault("database.mongo.database", "sajilo")
	v.SetDefault("database.mongo.collection", "dead_jobs")
	v.SetDefault("recaptcha.secret", "")
	v.SetDefault("recaptcha.url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("recaptcha.timeout", 5*time.Second)
	v.SetDefault("recaptcha.min_score", 0.5)
	v.SetDefault("cache.room_ttl", 5*time.Minute)
	v.SetDefault("worker.count", 3)
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@sajilo.local")
}

// LoadConfig reads .env (when present), application.yaml (when present) and SAJILO_* environment variables,
// in increasing order of precedence, into Conf.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SAJILO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("application.yaml not found, using defaults and environment")
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
