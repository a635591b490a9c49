package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config for the converter server
type Config struct {
	Server ServerConfig `yaml:"server"`
	Rates  RatesConfig  `yaml:"rates"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig HTTP listener settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`
}

// RatesConfig rate provider settings. The base currency code is appended to BaseURL.
type RatesConfig struct {
	BaseURL string        `yaml:"base_url" env:"RATES_BASE_URL" env-default:"https://open.er-api.com/v6/latest/"`
	Timeout time.Duration `yaml:"timeout" env:"RATES_TIMEOUT" env-default:"5s"`
}

// LogConfig logger settings
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration. Variables from a .env file in the working
// directory are loaded first if it exists. When path is set the YAML file
// is read, with environment variables taking precedence; otherwise only the
// environment and defaults are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.Rates.BaseURL == "" {
		return errors.New("RATES_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Rates.BaseURL, "http://") && !strings.HasPrefix(c.Rates.BaseURL, "https://") {
		return fmt.Errorf("RATES_BASE_URL must be an http(s) URL: %s", c.Rates.BaseURL)
	}
	if c.Rates.Timeout <= 0 {
		return fmt.Errorf("RATES_TIMEOUT must be positive: %s", c.Rates.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level the go-kit level filter option for Log.Level
func (c *Config) Level() (level.Option, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return level.AllowDebug(), nil
	case "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("invalid log level: %s", c.Log.Level)
}
