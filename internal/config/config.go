// Package config loads the optional user configuration file controlling how
// the resolver is invoked.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Template is the commented default config written by generate-config.
//
//go:embed config.toml
var Template []byte

const DefaultPermissionMode = "acceptEdits"

// Config holds the optional user settings for resolver invocations.
type Config struct {
	// PermissionMode overrides the --permission-mode flag.
	PermissionMode string `mapstructure:"permission_mode"`
	// ExtraArgs are additional CLI arguments passed to the resolver.
	ExtraArgs []string `mapstructure:"extra_args"`
	// ExtraSystemPrompt is appended to the default system prompt.
	ExtraSystemPrompt string `mapstructure:"extra_system_prompt"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{PermissionMode: DefaultPermissionMode}
}

// DefaultPath returns the default config file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "claude-mergetool", "config.toml"), nil
}

// Load reads the config at path. An empty path means the default location,
// where a missing file just yields defaults; an explicit path must exist.
// A malformed file is an error either way.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Default(), nil
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("permission_mode", DefaultPermissionMode)

	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
