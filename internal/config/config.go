package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"

	// DefaultCapacity - типичный лимит localStorage в браузере
	DefaultCapacity = 5 * 1024 * 1024
)

type Config struct {
	Storage struct {
		Type        string `yaml:"type"`
		Capacity    int64  `yaml:"capacity"`
		SeedSamples bool   `yaml:"seed_samples"`
	} `yaml:"storage"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Storage.Type = StorageSQLite
	cfg.Storage.Capacity = DefaultCapacity
	cfg.Storage.SeedSamples = true
	cfg.SQLite.Path = "anonforum.db"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Prefix = "anonforum:"
	cfg.Log.Level = "info"
	return cfg
}

// Load читает конфигурацию из YAML. Отсутствующий файл - не ошибка, используются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageSQLite, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Storage.Capacity <= 0 {
		return errors.New("storage capacity must be positive")
	}
	if c.Storage.Type == StoragePostgres && c.Postgres.DSN == "" {
		return errors.New("postgres dsn is required")
	}
	if c.Storage.Type == StorageSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite path is required")
	}
	return nil
}
