package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level driftscan configuration.
type Config struct {
	Root           string        `mapstructure:"root"`
	Depth          int           `mapstructure:"depth"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	SkipDirs       []string      `mapstructure:"skip_dirs"`
	Output         Output        `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("depth", DefaultDepth)
	v.SetDefault("fetch_timeout", DefaultFetchTimeout.String())
	v.SetDefault("command_timeout", DefaultCommandTimeout.String())
	v.SetDefault("skip_dirs", DefaultSkipDirs)
	v.SetDefault("output.color", DefaultOutput.Color)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand the configured root, if any.
	cfg.Root = expandPath(cfg.Root)

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
