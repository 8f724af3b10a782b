package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName  = "seedvault"
	fileName = "seedvault.yaml"
)

type Config struct {
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	Cipher  Cipher  `mapstructure:"cipher" yaml:"cipher"`
	Log     Log     `mapstructure:"log" yaml:"log"`
}

type Storage struct {
	// Backend is one of bolt, sqlite, keyring or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
	// Strict refuses to treat an unreadable record document as empty.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

type Cipher struct {
	// Scheme is legacy or hardened. It only affects new blobs.
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Iterations int    `mapstructure:"iterations" yaml:"iterations"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// FlagKeys maps config keys to the persistent flags that override them.
var FlagKeys = map[string]string{
	"storage.backend": "backend",
	"storage.path":    "path",
	"log.level":       "log-level",
}

// Dir returns the per-user seedvault directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Defaults returns the built-in values for every key.
func Defaults() map[string]any {
	dataPath := "vault.db"
	if dir, err := Dir(); err == nil {
		dataPath = filepath.Join(dir, "vault.db")
	}
	return map[string]any{
		"storage.backend":   "bolt",
		"storage.path":      dataPath,
		"storage.strict":    false,
		"cipher.scheme":     "legacy",
		"cipher.iterations": 0,
		"log.level":         "warn",
	}
}

// Load resolves the configuration from defaults, the config file,
// SEEDVAULT_* environment variables and the command's flags, in increasing
// precedence. An explicit file must exist; the default locations are
// optional.
func Load(cmd *cobra.Command, file string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for key, name := range FlagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// WriteConfigFile writes c as YAML to path, or to Path() if path is empty.
// It returns the path written.
func WriteConfigFile(c *Config, path string) (string, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return "", err
		}
		path = p
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
