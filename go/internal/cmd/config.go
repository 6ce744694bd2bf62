package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	AutoSave struct {
		Enabled    bool          `yaml:"enabled"`
		ShortDelay time.Duration `yaml:"short_delay"`
		LongDelay  time.Duration `yaml:"long_delay"`
	} `yaml:"autosave"`

	History struct {
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"history"`

	Sync struct {
		Enabled       bool          `yaml:"enabled"`
		NATSURL       string        `yaml:"nats_url"`
		Stream        string        `yaml:"stream"`
		SubjectPrefix string        `yaml:"subject_prefix"`
		PollInterval  time.Duration `yaml:"poll_interval"`
	} `yaml:"sync"`

	LogLevel string `yaml:"log_level"`
}

func defaultConfig() *Config {
	var c Config
	c.Storage.Path = "data/touchline.db"
	c.AutoSave.Enabled = true
	c.AutoSave.ShortDelay = 500 * time.Millisecond
	c.AutoSave.LongDelay = 2 * time.Second
	c.History.MaxEntries = 200
	c.Sync.Enabled = false
	c.Sync.NATSURL = "nats://localhost:4222"
	c.Sync.Stream = "TOUCHLINE_SYNC"
	c.Sync.SubjectPrefix = "touchline.sync"
	c.Sync.PollInterval = 5 * time.Second
	c.LogLevel = "info"
	return &c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// loadConfig reads the YAML file when present and lets environment
// variables override the file.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Storage.Path = getEnv("TOUCHLINE_DB_PATH", config.Storage.Path)
	config.AutoSave.Enabled = getEnvAsBool("TOUCHLINE_AUTOSAVE", config.AutoSave.Enabled)
	config.History.MaxEntries = getEnvAsInt("TOUCHLINE_HISTORY_MAX", config.History.MaxEntries)
	config.Sync.Enabled = getEnvAsBool("TOUCHLINE_SYNC", config.Sync.Enabled)
	config.Sync.NATSURL = getEnv("NATS_URL", config.Sync.NATSURL)
	config.LogLevel = getEnv("TOUCHLINE_LOG_LEVEL", config.LogLevel)

	return config, nil
}
