package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/doctor"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, endpoint, tunnel and preference issues",
	Long: `Run diagnostic checks and report what's wrong and how to fix it.

Checks:
  CONFIG    config file found and valid
  ENDPOINT  /api/stats and /api/history answer
  SSH       tunnel host resolves and connects (when ssh is set)
  STATE     preference file readable

Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd, cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput is the JSON output structure for doctor.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput holds the results of one category.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput counts results by status.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(cmd *cobra.Command, out io.Writer) error {
	if !isTTY(out) {
		ui.UsePlainOutput()
	}

	checks, cleanup := collectChecks(cmd)
	defer cleanup()
	results := doctor.RunAllParallel(cmd.Context(), checks)
	if doctorFix {
		results = doctor.Fix(cmd.Context(), checks, results)
	}

	var err error
	if doctorJSON {
		err = writeDoctorJSON(out, checks, results)
	} else {
		err = writeDoctorText(out, checks, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			doctor.Summary(results),
			"Fix the failing checks above and run 'sysdash doctor' again")
	}
	return nil
}

// collectChecks builds the check list. A config that doesn't load still
// gets its failure reported; the other checks then run against defaults.
// The returned cleanup closes the stats client's tunnel.
func collectChecks(cmd *cobra.Command) ([]doctor.Check, func()) {
	path, _ := config.Find(cfgFile)

	s, loadErr := loadSettings(cmd)
	cfg := config.DefaultConfig()
	if loadErr == nil {
		cfg = s.cfg
	}

	checks := []doctor.Check{
		&doctor.ConfigFileCheck{Path: path},
		&doctor.ConfigValidCheck{Config: cfg, Err: loadErr},
	}

	checks = append(checks, doctor.NewSSHChecks(cfg.SSH, cfg.Timeout)...)

	cleanup := func() {}
	client, closeClient, err := newStatsClient(cmd.Context(), cfg, logger.NewEnvLogger("[doctor]"))
	if err == nil {
		cleanup = closeClient
		checks = append(checks, doctor.NewEndpointChecks(client, cfg.Endpoint, nil)...)
	} else {
		checks = append(checks, doctor.NewEndpointChecks(nil, cfg.Endpoint, err)...)
	}

	checks = append(checks, &doctor.StateFileCheck{Path: cfg.StateFile})
	return checks, cleanup
}

func groupResults(checks []doctor.Check, results []doctor.CheckResult) map[string][]doctor.CheckResult {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], results[i])
	}
	return grouped
}

func writeDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := groupResults(checks, results)

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}
	for _, cat := range doctor.Categories {
		if rs, ok := grouped[cat]; ok {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: rs})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func writeDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("sysdash Diagnostic Report") + "\n\n")

	grouped := groupResults(checks, results)
	for _, category := range doctor.Categories {
		rs, ok := grouped[category]
		if !ok {
			continue
		}

		b.WriteString(headerStyle.Render(category) + "\n")
		for _, r := range rs {
			symbol, style := ui.SymbolComplete, successStyle
			switch r.Status {
			case doctor.StatusWarn:
				style = warnStyle
			case doctor.StatusFail:
				symbol, style = ui.SymbolFail, errorStyle
			}

			fmt.Fprintf(&b, "  %s %s\n", style.Render(symbol), r.Message)
			if r.Suggestion != "" && r.Status != doctor.StatusPass {
				for _, line := range strings.Split(r.Suggestion, "\n") {
					b.WriteString("    " + mutedStyle.Render(line) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("━", 60) + "\n\n")

	if !doctor.HasIssues(results) {
		fmt.Fprintf(&b, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(&b, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
		if n := doctor.FixableCount(results); n > 0 && !doctorFix {
			fmt.Fprintf(&b, "\n  Run with %s to attempt automatic fixes where possible.\n",
				mutedStyle.Render("--fix"))
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}
