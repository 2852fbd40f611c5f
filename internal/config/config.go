package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from .env files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ClientID    string `mapstructure:"jean_client_id"`
	AccessToken string `mapstructure:"jean_access_token"`
	APIKey      string `mapstructure:"jean_api_key"`
	APIBase     string `mapstructure:"jean_api_base"`
	DeployBase  string `mapstructure:"jean_deploy_base"`
	UserAgent   string `mapstructure:"http_user_agent"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`

	SinksFile string `mapstructure:"sinks_file"`
}

// Load reads configuration from .env files and environment variables.
// Credentials are not validated here; the API client rejects empty secrets.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "context-probe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "")
	v.SetDefault("jean_client_id", "")
	v.SetDefault("jean_access_token", "")
	v.SetDefault("jean_api_key", "")
	v.SetDefault("jean_api_base", "https://api.jean-technologies.com/v2")
	v.SetDefault("jean_deploy_base", "https://jean-technologies.up.railway.app")
	v.SetDefault("http_user_agent", "context-probe/1.0")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/probes.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	cfg.SinksFile = strings.TrimSpace(cfg.SinksFile)

	return &cfg, nil
}

// Redacted returns a copy safe to log: secrets are masked.
func (c Config) Redacted() Config {
	c.AccessToken = mask(c.AccessToken)
	c.APIKey = mask(c.APIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
