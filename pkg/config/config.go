// Package config loads gherkin-ai settings from YAML files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/gherkin-ai/pkg/llm"
)

type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Titles TitlesConfig `yaml:"titles"`
}

// LLMConfig selects the provider. API keys are only read from the environment.
type LLMConfig struct {
	// Provider is openai, claude or gemini. Empty means LLM_PROVIDER, then openai.
	Provider string `yaml:"provider"`
	// Model overrides the provider default and the *_MODEL variable.
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Calls overrides sampling per call type: generate, quality, complexity, titles.
	Calls map[string]CallConfig `yaml:"calls"`
}

type CallConfig struct {
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

type TitlesConfig struct {
	// MinStoryLength is the story length, in characters, from which title
	// suggestions are requested.
	MinStoryLength int `yaml:"min_story_length"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	dbPath := "features.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".gherkin-ai", "features.db")
	}

	return &Config{
		LLM: LLMConfig{
			Timeout: 2 * time.Minute,
			Calls:   map[string]CallConfig{},
		},
		Store:  StoreConfig{Path: dbPath},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		Titles: TitlesConfig{MinStoryLength: 20},
	}
}

// LoadFromFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.LLM.Provider != "" {
		if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
			return err
		}
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	for name, call := range c.LLM.Calls {
		if _, ok := llm.DefaultCallSettings()[llm.CallType(name)]; !ok {
			return fmt.Errorf("llm.calls.%s: unknown call type (expected generate, quality, complexity or titles)", name)
		}
		if call.Temperature != nil && (*call.Temperature < 0 || *call.Temperature > 2) {
			return fmt.Errorf("llm.calls.%s.temperature must be between 0 and 2", name)
		}
		if call.MaxTokens != nil && *call.MaxTokens < 0 {
			return fmt.Errorf("llm.calls.%s.max_tokens must not be negative", name)
		}
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Titles.MinStoryLength < 0 {
		return fmt.Errorf("titles.min_story_length must not be negative")
	}
	return nil
}

// LLMOptions returns the provider selection for llm.Factory.
func (c *Config) LLMOptions() (llm.Options, error) {
	opts := llm.Options{Model: c.LLM.Model, BaseURL: c.LLM.BaseURL, Timeout: c.LLM.Timeout}
	if c.LLM.Provider != "" {
		p, err := llm.ParseProvider(c.LLM.Provider)
		if err != nil {
			return llm.Options{}, err
		}
		opts.Provider = p
	}
	return opts, nil
}

// InvokerOptions applies the timeout and per-call overrides on top of the
// default call settings.
func (c *Config) InvokerOptions() []llm.InvokerOption {
	opts := []llm.InvokerOption{llm.WithTimeout(c.LLM.Timeout)}
	defaults := llm.DefaultCallSettings()
	for name, call := range c.LLM.Calls {
		settings, ok := defaults[llm.CallType(name)]
		if !ok {
			continue
		}
		if call.Temperature != nil {
			settings.Temperature = *call.Temperature
		}
		if call.MaxTokens != nil {
			settings.MaxTokens = *call.MaxTokens
		}
		opts = append(opts, llm.WithCallSettings(llm.CallType(name), settings))
	}
	return opts
}
