package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// ProjectConfigFile is looked up in the working directory and its parents.
	ProjectConfigFile = "gherkin-ai.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/gherkin-ai"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *zap.Logger
	getenv func(string) string
	home   func() (string, error)
	cwd    func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, getenv: os.Getenv, home: os.UserHomeDir, cwd: os.Getwd}
}

// Load loads configuration with layered precedence:
//  1. defaults
//  2. user config (~/.config/gherkin-ai/config.yaml)
//  3. project config (gherkin-ai.yaml in the current or a parent directory)
//  4. explicit file, when path is not empty
//  5. environment variables
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if home, err := l.home(); err == nil {
		userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
		l.overlayUser(cfg, userPath)
	}

	if projectPath := l.findProjectConfig(); projectPath != "" {
		if err := cfg.LoadFromFile(projectPath); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded project config", zap.String("path", projectPath))
	}

	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config", zap.String("path", path))
	}

	l.applyEnv(cfg)
	cfg.Store.Path = l.expandHome(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayUser applies the user file when present; a broken user file is
// logged and skipped.
func (l *Loader) overlayUser(cfg *Config, path string) {
	err := cfg.LoadFromFile(path)
	switch {
	case err == nil:
		l.logger.Debug("loaded user config", zap.String("path", path))
	case os.IsNotExist(err):
	default:
		l.logger.Warn("failed to load user config", zap.String("path", path), zap.Error(err))
	}
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := l.getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := l.getenv("GHERKIN_AI_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := l.getenv("GHERKIN_AI_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := l.getenv("GHERKIN_AI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// expandHome resolves a leading ~/ against the home directory.
func (l *Loader) expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := l.home()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// findProjectConfig walks up from the working directory.
func (l *Loader) findProjectConfig() string {
	dir, err := l.cwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
