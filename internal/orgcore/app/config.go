// Package app wires configuration, storage, notifications and services into
// one container for embedding by a transport layer or an operational command.
package app

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseFile is the path to the sqlite database file.
	DatabaseFile string `mapstructure:"ORGCORE_DATABASE_FILE"`
	// Env is the application environment: dev, staging or prod.
	Env string `mapstructure:"ORGCORE_ENV"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is json or text.
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// AMQPURL enables the AMQP notification dispatcher when set; empty
	// falls back to the log dispatcher.
	AMQPURL string `mapstructure:"ORGCORE_AMQP_URL"`
	// AMQPExchange is the topic exchange notifications are published on.
	AMQPExchange string `mapstructure:"ORGCORE_AMQP_EXCHANGE"`
	// TxTimeout bounds every store transaction.
	TxTimeout time.Duration `mapstructure:"ORGCORE_TX_TIMEOUT"`
	// RecoveryTTL bounds how long a password recovery code stays valid.
	RecoveryTTL time.Duration `mapstructure:"ORGCORE_RECOVERY_TTL"`
}

// LoadConfig reads .env (if present), then builds Config from the
// environment. Env vars override .env values. A missing .env is not an
// error, e.g. in CI.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore a missing .env

	v.AutomaticEnv()

	v.SetDefault("ORGCORE_DATABASE_FILE", "orgcore.db")
	v.SetDefault("ORGCORE_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ORGCORE_AMQP_URL", "")
	v.SetDefault("ORGCORE_AMQP_EXCHANGE", "orgcore.events")
	v.SetDefault("ORGCORE_TX_TIMEOUT", "5s")
	v.SetDefault("ORGCORE_RECOVERY_TTL", "30m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseFile == "" {
		return Config{}, fmt.Errorf("ORGCORE_DATABASE_FILE must not be empty")
	}
	if cfg.TxTimeout < 0 {
		return Config{}, fmt.Errorf("ORGCORE_TX_TIMEOUT must not be negative")
	}
	return cfg, nil
}
