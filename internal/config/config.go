package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port         string   `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  int    `toml:"token_ttl_seconds"`
	// TrustUserIDHeader accepts the X-User-Id header as-is. Only safe when an
	// upstream proxy strips the header from client requests.
	TrustUserIDHeader bool `toml:"trust_user_id_header"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type WikipediaConfig struct {
	BaseURL        string `toml:"base_url"`
	SearchLimit    int    `toml:"search_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type DatabaseConfig struct {
	Address      string `toml:"address"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type LoggerConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	LLM       LLMConfig       `toml:"llm"`
	Wikipedia WikipediaConfig `toml:"wikipedia"`
	Database  DatabaseConfig  `toml:"database"`
	Logger    LoggerConfig    `toml:"logger"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a config file, relying on the env
// overrides applied during server bootstrap.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Wikipedia.BaseURL == "" {
		c.Wikipedia.BaseURL = "https://vi.wikipedia.org/w/api.php"
	}
	if c.Wikipedia.SearchLimit <= 0 {
		c.Wikipedia.SearchLimit = 1
	}
	if c.Wikipedia.TimeoutSeconds <= 0 {
		c.Wikipedia.TimeoutSeconds = 10
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * 3600
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
}
