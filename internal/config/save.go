package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# sysdash configuration\n# See 'sysdash init --help' for the available keys.\n\n"

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}
	if err := enc.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write config file "+path,
			"Check file permissions")
	}
	return nil
}
