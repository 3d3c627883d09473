package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	dc "contrib-stats/domain/config"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Env holds the settings read from the process environment.
type Env struct {
	// ConfigPath - path of the optional YAML config file
	ConfigPath string `envconfig:"CONFIG_PATH" default:"./config.yml"`

	// GitHubToken - token used by the import command
	GitHubToken string `envconfig:"GITHUB_TOKEN"`

	// GitHubUser - login whose contributions are imported; overrides github.username
	GitHubUser string `envconfig:"GITHUB_USER"`

	// LogLevel - debug, info, warn or error
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv parses the environment into Env.
func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Load parses the YAML configuration file at path and applies defaults.
func Load(path string) (*dc.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c dc.Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ApplyDefaults()
	slog.Info(fmt.Sprintf("Loaded config: %s", path))
	return &c, nil
}

// Resolve loads the config file named by env when it exists and falls back to
// the defaults otherwise. The GITHUB_USER variable wins over the file.
func Resolve(env Env) (*dc.Config, error) {
	cfg, err := Load(env.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("config.file.absent", "path", env.ConfigPath)
		cfg = dc.Defaults()
	} else if err != nil {
		return nil, err
	}
	if env.GitHubUser != "" {
		cfg.GitHub.Username = env.GitHubUser
	}
	return cfg, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// FromEnvironment reads the environment and resolves the config file it points to.
func FromEnvironment() (Env, *dc.Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return Env{}, nil, err
	}
	cfg, err := Resolve(env)
	if err != nil {
		return Env{}, nil, err
	}
	return env, cfg, nil
}
