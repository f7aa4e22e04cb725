package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
	"github.com/rileyhilliard/sysdash/internal/stats"
	"github.com/rileyhilliard/sysdash/internal/ui"
	"github.com/spf13/cobra"
)

// Output formats for the stats command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatProm = "prom"
)

var (
	statsFormat  string
	statsHistory int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Fetch one snapshot and print it",
	Long: `Fetch a single snapshot from /api/stats and print it.

Formats:
  text  aligned key/value listing (default; colour only on a terminal)
  json  the snapshot as JSON
  prom  Prometheus text exposition, for scripts or node_exporter's textfile collector

With --history N, the last N history samples are printed as a table after
the snapshot (text format only).

Examples:
  sysdash stats
  sysdash stats --format json | jq .cpu
  sysdash stats --format prom > /var/lib/node_exporter/sysdash.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsCommand(cmd, statsFormat, statsHistory, cmd.OutOrStdout())
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", FormatText, "output format: text, json, or prom")
	statsCmd.Flags().IntVar(&statsHistory, "history", 0, "also print the last N history samples (text format)")
	_ = statsCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatText, FormatJSON, FormatProm}, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(statsCmd)
}

func statsCommand(cmd *cobra.Command, format string, history int, out io.Writer) error {
	switch format {
	case FormatText, FormatJSON, FormatProm:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown format %q", format),
			"Use --format text, json, or prom")
	}
	if history < 0 {
		return errors.New(errors.ErrConfig,
			"--history must not be negative",
			"Pass a sample count like --history 30")
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	tty := isTTY(out)
	if !tty {
		ui.UsePlainOutput()
	}

	log := logger.NewEnvLogger("[stats]")
	client, cleanup, err := newStatsClient(cmd.Context(), s.cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var spin *ui.Spinner
	if format == FormatText {
		spin = ui.NewSpinner("Fetching "+client.BaseURL(), cmd.ErrOrStderr(), tty)
		spin.Start()
	}

	snap, err := client.Snapshot(cmd.Context())
	var samples []stats.HistorySample
	if err == nil && history > 0 && format == FormatText {
		samples, err = client.History(cmd.Context(), history)
	}

	if spin != nil {
		if err != nil {
			spin.Fail()
		} else {
			spin.Success()
		}
	}
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return writeJSON(out, snap)
	case FormatProm:
		return writeProm(out, snap)
	}

	if _, err := fmt.Fprint(out, renderSnapshot(snap)); err != nil {
		return err
	}
	if len(samples) > 0 {
		_, err = fmt.Fprintln(out, "\n"+renderSamples(samples))
	}
	return err
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}

func renderSnapshot(snap *stats.Snapshot) string {
	return ui.RenderKeyValue([][2]string{
		{"CPU", stats.FormatPercent(snap.CPU)},
		{"Memory", stats.FormatPercent(snap.MemoryPercent)},
		{"Memory used", snap.MemoryUsed.String()},
		{"Memory total", snap.MemoryTotal.String()},
		{"Memory cached", snap.MemoryCached.String()},
		{"Disk", stats.FormatPercent(snap.DiskPercent)},
		{"Load", snap.LoadAvg.String()},
		{"OS", snap.OSInfo.String()},
		{"Boot time", snap.BootTime.String()},
		{"Network", monitor.NetText(snap.NetUp, snap.NetDown)},
	})
}

func renderSamples(samples []stats.HistorySample) string {
	columns := []ui.TableColumn{
		{Title: "Time", Width: 4},
		{Title: "CPU", Width: 3},
		{Title: "Memory", Width: 6},
		{Title: "Disk", Width: 4},
		{Title: "Up", Width: 2},
		{Title: "Down", Width: 4},
	}
	rows := make([][]string, len(samples))
	for i, s := range samples {
		rows[i] = []string{
			s.TimeOfDay(),
			stats.FormatPercent(s.CPU),
			stats.FormatPercent(s.MemoryPercent),
			stats.FormatPercent(s.DiskPercent),
			monitor.FormatRate(s.NetUp),
			monitor.FormatRate(s.NetDown),
		}
	}
	return ui.RenderSimpleTable(columns, rows)
}

func writeJSON(out io.Writer, snap *stats.Snapshot) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// writeProm encodes snap as Prometheus text exposition. Numeric fields
// become gauges; the descriptive strings ride on a constant-1 info gauge.
func writeProm(out io.Writer, snap *stats.Snapshot) error {
	reg := prometheus.NewRegistry()

	gauges := []struct {
		name, help string
		value      float64
	}{
		{"cpu_percent", "CPU usage in percent.", snap.CPU},
		{"memory_percent", "Memory usage in percent.", snap.MemoryPercent},
		{"disk_percent", "Disk usage in percent.", snap.DiskPercent},
		{"network_up_kbps", "Upload throughput in KB/s.", snap.NetUp},
		{"network_down_kbps", "Download throughput in KB/s.", snap.NetDown},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdash",
			Name:      g.name,
			Help:      g.help,
		})
		gauge.Set(g.value)
		reg.MustRegister(gauge)
	}

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sysdash",
		Name:      "host_info",
		Help:      "Descriptive host fields reported by the stats endpoint.",
	}, []string{"os", "load_avg", "memory_used", "boot_time"})
	info.WithLabelValues(
		snap.OSInfo.String(),
		snap.LoadAvg.String(),
		snap.MemoryUsed.String(),
		snap.BootTime.String(),
	).Set(1)
	reg.MustRegister(info)

	families, err := reg.Gather()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDecode,
			"Cannot gather snapshot metrics",
			"This is unexpected - please report it.")
	}
	return encodeFamilies(out, families)
}

func encodeFamilies(out io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.WrapWithCode(err, errors.ErrDecode,
				"Cannot encode metric "+mf.GetName(),
				"Check that the output is writable")
		}
	}
	return nil
}
