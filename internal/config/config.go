// Package config loads the server configuration from a YAML file with
// environment overrides. A .env file in the working directory is honored
// when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the storage DSN. SQLite file paths and postgres URLs
// are both accepted; the dialect is detected from the DSN.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry-hours"`
}

// Expiry returns the configured token lifetime.
func (c JWTConfig) Expiry() time.Duration {
	hours := c.ExpiryHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// RedisConfig holds the optional group-detail cache settings. An empty Addr
// disables Redis and falls back to the in-process cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logging settings. An empty File logs to stdout only.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the root configuration document.
type Config struct {
	Server       ServerConfig   `yaml:"server"`
	Database     DatabaseConfig `yaml:"database"`
	JWT          JWTConfig      `yaml:"jwt"`
	Redis        RedisConfig    `yaml:"redis"`
	Log          LogConfig      `yaml:"log"`
	SeedDemoData bool           `yaml:"seed-demo-data"`
}

// Load reads configuration from path, then applies environment overrides.
// A missing file is not an error; defaults plus environment apply.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: "expenseshare.db"},
		JWT:      JWTConfig{ExpiryHours: 24},
		Log:      LogConfig{Level: "info"},
	}

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case !os.IsNotExist(errRead):
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, fmt.Errorf("config: jwt secret is required (set jwt.secret or EXPENSESHARE_JWT_SECRET)")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXPENSESHARE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("EXPENSESHARE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("EXPENSESHARE_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("EXPENSESHARE_JWT_EXPIRY_HOURS"); v != "" {
		if hours, errParse := strconv.Atoi(v); errParse == nil && hours > 0 {
			cfg.JWT.ExpiryHours = hours
		}
	}
	if v := os.Getenv("EXPENSESHARE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("EXPENSESHARE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("EXPENSESHARE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EXPENSESHARE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("EXPENSESHARE_SEED_DEMO_DATA"); v != "" {
		if seed, errParse := strconv.ParseBool(v); errParse == nil {
			cfg.SeedDemoData = seed
		}
	}
}
