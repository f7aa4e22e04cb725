package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/ui"
	"github.com/rileyhilliard/sysdash/pkg/sshutil"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Endpoint       string        // Pre-specified endpoint URL
	SSH            string        // Pre-specified SSH tunnel host
	Interval       time.Duration // Pre-specified poll interval
	Global         bool          // Write ~/.config/sysdash/config.yaml instead of ./.sysdash.yaml
	Overwrite      bool          // Overwrite existing config without asking
	NonInteractive bool          // Skip prompts, use flags and defaults
	SkipCheck      bool          // Don't test the endpoint before saving
	Out            io.Writer
}

var (
	initInterval       time.Duration
	initGlobal         bool
	initForce          bool
	initNonInteractive bool
	initSkipCheck      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sysdash config file",
	Long: `Create a config file with the endpoint to poll, an optional SSH tunnel
host, and the poll interval.

The endpoint is tested before saving. Use --yes to skip the prompts.

Examples:
  sysdash init
  sysdash init --global
  sysdash init --yes --endpoint http://10.0.0.5:5000 --interval 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// --endpoint and --ssh are the root's persistent flags.
		endpoint, _ := cmd.Flags().GetString("endpoint")
		sshHost, _ := cmd.Flags().GetString("ssh")
		return Init(InitOptions{
			Endpoint:       endpoint,
			SSH:            sshHost,
			Interval:       initInterval,
			Global:         initGlobal,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			SkipCheck:      initSkipCheck,
			Out:            cmd.OutOrStdout(),
		})
	},
}

func init() {
	f := initCmd.Flags()
	f.DurationVar(&initInterval, "interval", 0, "poll interval")
	f.BoolVar(&initGlobal, "global", false, "write the global config instead of ./"+config.ConfigFileName)
	f.BoolVar(&initForce, "force", false, "overwrite an existing config")
	f.BoolVarP(&initNonInteractive, "yes", "y", false, "don't prompt; use flags and defaults")
	f.BoolVar(&initSkipCheck, "skip-check", false, "don't test the endpoint before saving")
	rootCmd.AddCommand(initCmd)
}

// Init creates a new config file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	configPath := filepath.Join(".", config.ConfigFileName)
	if opts.Global {
		configPath = config.GlobalPath()
		if configPath == "" {
			return errors.New(errors.ErrConfig,
				"Cannot locate your home directory for the global config",
				"Run without --global to write ./"+config.ConfigFileName)
		}
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	cfg.SSH = opts.SSH
	if opts.Interval > 0 {
		cfg.Interval = opts.Interval
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !opts.SkipCheck {
		if err := checkEndpoint(cfg, opts.NonInteractive, out); err != nil {
			return err
		}
	}

	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  sysdash          - Open the live dashboard")
	fmt.Fprintln(out, "  sysdash history  - Open the history charts")
	fmt.Fprintln(out, "  sysdash stats    - Print one snapshot")

	return nil
}

func promptConfig(cfg *config.Config) error {
	const noTunnel = ""

	sshOptions := []huh.Option[string]{huh.NewOption("None (connect directly)", noTunnel)}
	if hosts, err := sshutil.KnownHosts(); err == nil {
		for _, h := range hosts {
			sshOptions = append(sshOptions, huh.NewOption(h.Description(), h.Alias))
		}
	}

	interval := cfg.Interval.String()
	limit := strconv.Itoa(cfg.HistoryLimit)

	intervalOptions := huh.NewOptions("1s", "2s", "5s", "10s", "30s")
	if !containsOption(intervalOptions, interval) {
		intervalOptions = append(intervalOptions, huh.NewOption(interval, interval))
	}
	limitOptions := make([]huh.Option[string], len(cfg.HistoryLimits))
	for i, l := range cfg.HistoryLimits {
		limitOptions[i] = huh.NewOption(strconv.Itoa(l)+" samples", strconv.Itoa(l))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Telemetry endpoint").
				Description("Base URL serving /api/stats and /api/history").
				Placeholder(config.DefaultEndpoint).
				Value(&cfg.Endpoint).
				Validate(func(s string) error {
					probe := *cfg
					probe.Endpoint = s
					return config.Validate(&probe)
				}),
		),
	}
	if len(sshOptions) > 1 {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tunnel through SSH?").
				Description("Hosts from ~/.ssh/config").
				Options(sshOptions...).
				Value(&cfg.SSH),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Poll interval").
			Options(intervalOptions...).
			Value(&interval),
		huh.NewSelect[string]().
			Title("Default history window").
			Options(limitOptions...).
			Value(&limit),
	))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Use --yes with flags to skip the prompts")
	}

	d, err := time.ParseDuration(interval)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid interval: "+interval,
			"Pick one of the listed intervals")
	}
	cfg.Interval = d

	n, err := strconv.Atoi(limit)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid history window: "+limit,
			"Pick one of the listed windows")
	}
	cfg.HistoryLimit = n

	return nil
}

func containsOption(opts []huh.Option[string], v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

// checkEndpoint fetches one snapshot with cfg. In interactive mode a
// failure offers to save anyway.
func checkEndpoint(cfg *config.Config, nonInteractive bool, out io.Writer) error {
	spinner := ui.NewSpinner("Testing "+cfg.Endpoint, out, isTTY(out))
	spinner.Start()

	err := fetchOnce(cfg)
	if err == nil {
		spinner.Success()
		fmt.Fprintln(out)
		return nil
	}
	spinner.Fail()

	failure := errors.WrapWithCode(err, errors.ErrTransport,
		fmt.Sprintf("Endpoint '%s' did not answer", cfg.Endpoint),
		"Check the URL, or pass --skip-check to save anyway")

	if nonInteractive {
		return failure
	}

	fmt.Fprintf(out, "\n%s %s\n\n", ui.SymbolFail, errors.Short(err))

	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can fix the endpoint later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return failure
	}
	return nil
}

func fetchOnce(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	client, cleanup, err := newStatsClient(ctx, cfg, logger.NewEnvLogger("[init]"))
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.Snapshot(ctx)
	return err
}
