package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Routes the dashboard can open on.
const (
	RouteLive    = "/"
	RouteHistory = "/history"
)

// Defaults for a fresh config.
const (
	DefaultEndpoint     = "http://localhost:5000"
	DefaultInterval     = 5 * time.Second
	MinInterval         = 500 * time.Millisecond
	DefaultTimeout      = 4 * time.Second
	DefaultHistoryLimit = 60
	DefaultStateFile    = "~/.config/sysdash/state.yaml"
)

// DefaultHistoryLimits are the history windows offered on the history page.
var DefaultHistoryLimits = []int{30, 60, 120, 300}

// Config represents the complete .sysdash.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Endpoint is the base URL of the telemetry service. /api/stats and
	// /api/history are resolved against it.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// Interval between live polls.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout for each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// HistoryLimit is the history window selected when the history page opens.
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit"`

	// HistoryLimits are the windows the history page offers.
	HistoryLimits []int `yaml:"history_limits" mapstructure:"history_limits"`

	// Route is the page the dashboard opens on: "/" or "/history".
	Route string `yaml:"route" mapstructure:"route"`

	// StateFile stores client-side preferences such as the theme.
	StateFile string `yaml:"state_file" mapstructure:"state_file"`

	// SSH optionally tunnels every request through this host
	// (user@host, host:port, or an ~/.ssh/config alias).
	SSH string `yaml:"ssh,omitempty" mapstructure:"ssh"`

	// LogFile receives log output while the dashboard owns the terminal.
	LogFile string `yaml:"log_file,omitempty" mapstructure:"log_file"`

	// MetricsAddr serves client metrics on /metrics when set, e.g. ":9101".
	MetricsAddr string `yaml:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
}

// DefaultConfig returns a config with all default values.
func DefaultConfig() *Config {
	limits := make([]int, len(DefaultHistoryLimits))
	copy(limits, DefaultHistoryLimits)

	return &Config{
		Version:       CurrentConfigVersion,
		Endpoint:      DefaultEndpoint,
		Interval:      DefaultInterval,
		Timeout:       DefaultTimeout,
		HistoryLimit:  DefaultHistoryLimit,
		HistoryLimits: limits,
		Route:         RouteLive,
		StateFile:     DefaultStateFile,
	}
}
