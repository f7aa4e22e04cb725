package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rileyhilliard/sysdash/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	// Check version
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sysdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest sysdash release.")
	}

	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return err
	}

	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Poll interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use at least %s, e.g. 'interval: 5s'.", MinInterval))
	}

	if cfg.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Request timeout must be positive, got %s", cfg.Timeout),
			"Set something like 'timeout: 4s'.")
	}

	if err := validateHistory(cfg.HistoryLimit, cfg.HistoryLimits); err != nil {
		return err
	}

	if cfg.Route != RouteLive && cfg.Route != RouteHistory {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown route '%s'", cfg.Route),
			fmt.Sprintf("Use '%s' for the live page or '%s' for charts.", RouteLive, RouteHistory))
	}

	if strings.ContainsAny(cfg.SSH, " \t") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("SSH host '%s' contains whitespace", cfg.SSH),
			"Use a single host like 'user@host', 'host:2222', or an ~/.ssh/config alias.")
	}

	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid metrics address '%s'", cfg.MetricsAddr),
				"Use host:port, e.g. ':9101' or '127.0.0.1:9101'.")
		}
	}

	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New(errors.ErrConfig,
			"No stats endpoint configured",
			"Set 'endpoint' to the telemetry service, e.g. http://localhost:5000")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Endpoint '%s' isn't a valid URL", endpoint),
			"Use a full URL like http://localhost:5000")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Endpoint '%s' must use http or https", endpoint),
			"Use a full URL like http://localhost:5000")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Endpoint '%s' has no host", endpoint),
			"Use a full URL like http://localhost:5000")
	}
	return nil
}

func validateHistory(limit int, limits []int) error {
	if len(limits) == 0 {
		return errors.New(errors.ErrConfig,
			"history_limits is empty",
			"List at least one window, e.g. [30, 60, 120, 300].")
	}

	found := false
	prev := 0
	for _, n := range limits {
		if n <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("History window %d must be positive", n),
				"Use sample counts like 30, 60, 120, 300.")
		}
		if n <= prev {
			return errors.New(errors.ErrConfig,
				"history_limits must be in ascending order without repeats",
				"Sort the list, e.g. [30, 60, 120, 300].")
		}
		prev = n
		if n == limit {
			found = true
		}
	}

	if !found {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_limit %d isn't one of history_limits %v", limit, limits),
			"Pick a default from the list, or add it to history_limits.")
	}
	return nil
}
