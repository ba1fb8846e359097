package server

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the chatbot server configuration.
type Config struct {
	// Address to listen on (e.g., ":5000")
	ListenAddr string `toml:"listen_addr"`

	// Upstream LLM provider URL (e.g., "http://localhost:11434")
	UpstreamURL string `toml:"upstream_url"`

	// Model served by the upstream provider.
	Model string `toml:"model"`

	// Sampling settings for recommendation generation.
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`

	// DBPath is the path to the SQLite session database. Empty keeps
	// sessions in memory.
	DBPath string `toml:"db_path"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the configuration used when no file and no flags
// override it.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":5000",
		UpstreamURL: "http://localhost:11434",
		Model:       "llama3.2",
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// LoadConfig reads a TOML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
