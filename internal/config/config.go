package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Poll    PollConfig    `yaml:"poll"`
	Logger  LoggerConfig  `yaml:"logger"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
}

// APIConfig holds backend connection values.
type APIConfig struct {
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// PollConfig controls the message sync loop cadence.
type PollConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// SessionConfig defines where the login credentials are cached between
// invocations.
type SessionConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// UIConfig controls list rendering.
type UIConfig struct {
	PageSize int `yaml:"page_size"`
}

// Load reads configuration from an optional YAML profile file layered under
// environment variables; env wins. Path may be empty, in which case only
// defaults and env apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.API.BaseURL = getEnv("HELPDESK_API_URL", cfg.API.BaseURL)
	cfg.API.RequestTimeoutSeconds = getEnvAsInt("HELPDESK_REQUEST_TIMEOUT_SECONDS", cfg.API.RequestTimeoutSeconds)
	cfg.Poll.IntervalSeconds = getEnvAsInt("HELPDESK_POLL_INTERVAL_SECONDS", cfg.Poll.IntervalSeconds)
	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Session.CredentialsFile = getEnv("HELPDESK_CREDENTIALS_FILE", cfg.Session.CredentialsFile)
	cfg.UI.PageSize = getEnvAsInt("HELPDESK_PAGE_SIZE", cfg.UI.PageSize)

	if cfg.Poll.IntervalSeconds <= 0 {
		cfg.Poll.IntervalSeconds = 3
	}
	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = 50
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:               "http://127.0.0.1:5000/api",
			RequestTimeoutSeconds: 30,
		},
		Poll: PollConfig{
			IntervalSeconds: 3,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Session: SessionConfig{
			CredentialsFile: defaultCredentialsFile(),
		},
		UI: UIConfig{
			PageSize: 50,
		},
	}
}

// PollInterval returns the configured polling cadence.
func (p PollConfig) PollInterval() time.Duration {
	if p.IntervalSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(p.IntervalSeconds) * time.Second
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hdc-credentials.json"
	}
	return filepath.Join(home, ".hdc", "credentials.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
