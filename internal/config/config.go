// Package config loads the per-workspace settings in .xas/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ohare93/xagentsync/internal/vcs"
)

const (
	// FileName is the config file inside the state directory.
	FileName = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. XAS_AUTO_PUSH.
	EnvPrefix = "XAS"

	VCSAuto = "auto"
)

// Config models .xas/config.yaml.
type Config struct {
	VCS         string `yaml:"vcs" mapstructure:"vcs"`
	AutoCommit  bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	AutoPush    bool   `yaml:"auto_push" mapstructure:"auto_push"`
	Remote      string `yaml:"remote" mapstructure:"remote"`
	SyncRetries int    `yaml:"sync_retries" mapstructure:"sync_retries"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		VCS:         VCSAuto,
		AutoCommit:  true,
		AutoPush:    false,
		Remote:      "origin",
		SyncRetries: 3,
	}
}

// Path returns the config file location for a state directory.
func Path(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

// Validate ensures the config values are usable.
func (c Config) Validate() error {
	var errs []error
	if c.VCS != VCSAuto && !vcs.VCSType(c.VCS).IsValid() {
		errs = append(errs, fmt.Errorf("vcs must be one of auto, git, jj (got %q)", c.VCS))
	}
	if strings.TrimSpace(c.Remote) == "" {
		errs = append(errs, errors.New("remote is required"))
	}
	if c.SyncRetries < 0 {
		errs = append(errs, fmt.Errorf("sync_retries must not be negative (got %d)", c.SyncRetries))
	}
	return errors.Join(errs...)
}

// VCSType returns the configured backend, or "" to auto-detect.
func (c Config) VCSType() vcs.VCSType {
	if c.VCS == VCSAuto {
		return ""
	}
	return vcs.VCSType(c.VCS)
}

// Load reads the config for stateDir into v. Missing files fall back to the
// defaults; XAS_* environment variables override both.
func Load(v *viper.Viper, stateDir string) (Config, error) {
	def := Default()
	v.SetDefault("vcs", def.VCS)
	v.SetDefault("auto_commit", def.AutoCommit)
	v.SetDefault("auto_push", def.AutoPush)
	v.SetDefault("remote", def.Remote)
	v.SetDefault("sync_retries", def.SyncRetries)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := Path(stateDir)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	c.VCS = strings.ToLower(strings.TrimSpace(c.VCS))
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// WriteDefault writes c to stateDir unless a config file already exists.
// It reports whether a file was written.
func WriteDefault(stateDir string, c Config) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	path := Path(stateDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", stateDir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// ReadFile parses and validates the config file in stateDir without any
// environment overrides.
func ReadFile(stateDir string) (Config, error) {
	path := Path(stateDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := FromYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// FromYAML parses and validates raw config data. Keys missing from data keep
// their defaults.
func FromYAML(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
