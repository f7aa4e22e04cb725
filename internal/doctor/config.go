package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
)

// ConfigFileCheck reports which config file is in use. Running on defaults
// is a warning, not a failure.
type ConfigFileCheck struct {
	Path string // Resolved path, or empty when none was found
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(ctx context.Context) CheckResult {
	if c.Path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'sysdash init' to create " + config.ConfigFileName,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + c.Path,
	}
}

func (c *ConfigFileCheck) Fix() error { return nil }

// ConfigValidCheck reports the outcome of loading and validating the config.
type ConfigValidCheck struct {
	Config *config.Config
	Err    error
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run(ctx context.Context) CheckResult {
	if c.Err != nil {
		var e *errors.Error
		suggestion := "Check the YAML syntax in your config file"
		if errors.As(c.Err, &e) && e.Suggestion != "" {
			suggestion = e.Suggestion
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Invalid config: " + errors.Short(c.Err),
			Suggestion: suggestion,
		}
	}
	if c.Config == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "No config loaded",
		}
	}
	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("Polling %s every %s (timeout %s)",
			c.Config.Endpoint, c.Config.Interval, c.Config.Timeout),
	}
}

func (c *ConfigValidCheck) Fix() error { return nil }
