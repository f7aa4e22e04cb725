package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Global flags
var (
	cfgFile string
	verbose bool
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"endpoint": "endpoint",
	"ssh":      "ssh",
	"timeout":  "timeout",
	"interval": "interval",
	"limit":    "history_limit",
}

var rootCmd = &cobra.Command{
	Use:   "sysdash",
	Short: "Terminal dashboard for a host's CPU, memory, disk and network",
	Long: `sysdash polls a telemetry endpoint and shows CPU, memory, disk and
network usage as live values, progress bars and history charts.

Running sysdash with no command opens the live dashboard.

Examples:
  sysdash
  sysdash --endpoint http://10.0.0.5:5000
  sysdash history --limit 120
  sysdash stats --format json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			_ = os.Setenv(logger.DebugEnv, "1")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, "")
	},
}

// ExecuteContext runs the root command with ctx and returns the process
// exit code. Errors are printed to stderr.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./.sysdash.yaml or ~/.config/sysdash/config.yaml)")
	pf.String("endpoint", "", "telemetry endpoint base URL (e.g. http://localhost:5000)")
	pf.String("ssh", "", "tunnel requests through this SSH host")
	pf.Duration("timeout", 0, "per-request timeout (e.g. 4s)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// settings is the resolved configuration for one command run.
type settings struct {
	cfg  *config.Config
	path string
	v    *viper.Viper
}

// loadSettings merges defaults, the config file, SYSDASH_* variables and
// cmd's flags, then validates the result.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path, err := config.Find(cfgFile)
	if err != nil {
		return nil, err
	}

	v := config.NewViper()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Cannot bind --"+name,
					"This is unexpected - please report it.")
			}
		}
	}

	if err := config.ReadInto(v, path); err != nil {
		return nil, err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return &settings{cfg: cfg, path: path, v: v}, nil
}
