package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/prefs"
	"github.com/rileyhilliard/sysdash/internal/theme"
	"github.com/spf13/cobra"
)

// detectDark reports whether the terminal background is dark. Replaced in tests.
var detectDark = termenv.HasDarkBackground

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle|reset|show]",
	Short: "Show or change the stored theme preference",
	Long: `Show or change the light/dark preference the dashboard starts with.

The preference is stored in state_file and expires after 30 days. Without
a stored preference the dashboard follows the terminal background.

Examples:
  sysdash theme           # same as "show"
  sysdash theme dark
  sysdash theme toggle
  sysdash theme reset     # forget the preference`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle", "reset", "show"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "show"
		if len(args) == 1 {
			action = args[0]
		}
		return themeCommand(cmd, action, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func themeCommand(cmd *cobra.Command, action string, out io.Writer) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	store := prefs.NewFileStore(s.cfg.StateFile)

	var next theme.Mode
	switch action {
	case "show":
		return showTheme(store, out)
	case "reset":
		if err := store.Delete(theme.PreferenceKey); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "Theme preference cleared")
		return err
	case "toggle":
		doc := page.New(page.RouteLive)
		next = theme.Bootstrap(doc, store, detectDark).Flip()
	default:
		mode, ok := theme.Parse(action)
		if !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown theme action %q", action),
				"Use one of: light, dark, toggle, reset, show")
		}
		next = mode
	}

	if err := store.Set(theme.PreferenceKey, next.String(), theme.PreferenceOptions()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Theme set to %s (%s)\n", next, store.Path())
	return err
}

func showTheme(store *prefs.FileStore, out io.Writer) error {
	entry, ok := store.Entry(theme.PreferenceKey)
	if !ok {
		mode := theme.Light
		if detectDark() {
			mode = theme.Dark
		}
		_, err := fmt.Fprintf(out, "No stored preference; following the terminal background (%s)\n", mode)
		return err
	}

	if entry.Expires.IsZero() {
		if _, err := fmt.Fprintln(out, entry.Value); err != nil {
			return err
		}
	} else {
		_, err := fmt.Fprintf(out, "%s (expires %s)\n", entry.Value, entry.Expires.Local().Format("2006-01-02"))
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "Set-Cookie: %s\n", entry.Cookie(theme.PreferenceKey, time.Now()))
	return err
}
