package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sysdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sysdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SYSDASH_INTERVAL.
	EnvPrefix = "SYSDASH"
)

// NewViper returns a viper instance with defaults and SYSDASH_* environment
// overrides registered. Flags can be bound on top of it.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// setDefaults registers every key so environment overrides apply even
// when the config file doesn't mention them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("history_limit", d.HistoryLimit)
	v.SetDefault("history_limits", d.HistoryLimits)
	v.SetDefault("route", d.Route)
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("ssh", "")
	v.SetDefault("log_file", "")
	v.SetDefault("metrics_addr", "")
}

// Load reads config from the specified path. An empty path loads defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := ReadInto(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadInto points v at path and reads it. An empty path is a no-op.
func ReadInto(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sysdash init' to create a config file, or specify one with --config")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}
	return nil
}

// Decode converts viper's merged view into a Config and expands paths.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		where := v.ConfigFileUsed()
		if where == "" {
			where = "your config"
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	cfg.StateFile = Expand(cfg.StateFile)
	cfg.LogFile = Expand(cfg.LogFile)

	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sysdash.yaml in current directory
// 3. ~/.config/sysdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Global config
	if globalConfig := GlobalPath(); globalConfig != "" {
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/sysdash/config.yaml, or "" without a home dir.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault finds and loads the config, falling back to defaults when
// no file exists. Returns the path it loaded, or "".
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Watch calls onChange every time v's config file is rewritten. The new
// config is validated first; onChange receives the error instead when
// it doesn't load or validate. v must have been read from a file.
func Watch(v *viper.Viper, onChange func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err == nil {
			err = Validate(cfg)
		}
		onChange(cfg, err)
	})
	v.WatchConfig()
}
