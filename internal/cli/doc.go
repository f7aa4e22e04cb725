// Package cli implements the sysdash command-line interface.
//
// The package is organized around Cobra commands. Each command loads the
// config through loadSettings, builds what it needs (stats client, SSH
// tunnel, preference store), and hands off to the monitor package for the
// dashboard or prints a one-shot result.
//
// # Command Structure
//
//	sysdash              - Live dashboard (same as "sysdash dashboard")
//	sysdash history      - Dashboard on the history charts page
//	sysdash stats        - Fetch one snapshot and print it (text/json/prom)
//	sysdash theme        - Show or change the stored light/dark preference
//	sysdash init         - Create a config file interactively
//	sysdash doctor       - Diagnose config, endpoint, tunnel and state issues
//	sysdash version      - Print build information
//	sysdash completion   - Generate shell completion scripts
//
// # Configuration
//
// Settings come from viper: defaults, then the config file (--config,
// ./.sysdash.yaml, or ~/.config/sysdash/config.yaml), then SYSDASH_*
// environment variables, then flags. While the dashboard runs, the config
// file is watched and interval or timeout changes apply live.
package cli
