package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service. Values come from the
// environment (optionally seeded by a .env file loaded in main) with an
// optional config.yaml overriding nothing that the environment already set.
type Config struct {
	HTTPAddr         string
	StorageBackend   string // "postgres" or "memory"
	DatabaseURL      string
	RedisURL         string // empty disables Redis presence and the push queue
	JWTSecret        string
	FollowServiceURL string
	LogLevel         string
	LogFormat        string
	QueueConcurrency int
}

// Load reads configuration with viper. A missing config file is not an error;
// the environment alone is enough to run.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.backend", "postgres")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("queue.concurrency", 10)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		HTTPAddr:         v.GetString("server.addr"),
		StorageBackend:   v.GetString("storage.backend"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("auth.jwt.secret"),
		FollowServiceURL: v.GetString("follow.service.url"),
		LogLevel:         v.GetString("logging.level"),
		LogFormat:        v.GetString("logging.format"),
		QueueConcurrency: v.GetInt("queue.concurrency"),
	}, nil
}
