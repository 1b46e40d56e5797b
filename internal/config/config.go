package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"carrental/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Seed       SeedConfig       `yaml:"seed"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type APIAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	TokenTTL  string `yaml:"token_ttl"`
}

type APIRateLimitConfig struct {
	// RPS and Burst shape the per-client token bucket; RPS <= 0 disables it.
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// PerUserRequests per PerUserWindow seconds for authenticated callers.
	PerUserRequests int `yaml:"per_user_requests"`
	PerUserWindow   int `yaml:"per_user_window"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type SeedConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if len(c.API.Auth.JWTSecret) < 16 {
		return errors.New("api.auth.jwt_secret must be at least 16 characters")
	}

	if c.API.HTTP.BasePath != "" && !strings.HasPrefix(c.API.HTTP.BasePath, "/") {
		return fmt.Errorf("api.http.base_path must start with '/': %q", c.API.HTTP.BasePath)
	}

	if c.API.Auth.TokenTTL != "" {
		if _, err := time.ParseDuration(c.API.Auth.TokenTTL); err != nil {
			return fmt.Errorf("api.auth.token_ttl: %w", err)
		}
	}

	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging.output=file requires logging.file_path")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "carrental"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 5000
	}
	if c.API.HTTP.BasePath == "" {
		c.API.HTTP.BasePath = "/api"
	}
	c.API.HTTP.BasePath = strings.TrimRight(c.API.HTTP.BasePath, "/")
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 5001
	}
	if c.API.Auth.TokenTTL == "" {
		c.API.Auth.TokenTTL = "720h"
	}
	if c.API.RateLimit.PerUserRequests == 0 {
		c.API.RateLimit.PerUserRequests = models.DefaultRateLimitRequests
	}
	if c.API.RateLimit.PerUserWindow == 0 {
		c.API.RateLimit.PerUserWindow = models.DefaultRateLimitWindow
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}
