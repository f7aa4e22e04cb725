package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// newTestCommand returns a command carrying the flags loadSettings binds,
// isolated from rootCmd's shared state.
func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("endpoint", "", "")
	cmd.Flags().String("ssh", "", "")
	cmd.Flags().Duration("timeout", 0, "")
	cmd.Flags().Duration("interval", 0, "")
	cmd.Flags().Int("limit", 0, "")
	cmd.SetContext(context.Background())
	return cmd
}

// useConfig writes a config file pointing at endpoint with its state file
// in a temp dir, and points --config at it. Returns the temp dir.
func useConfig(t *testing.T, endpoint string, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".sysdash.yaml")
	body := fmt.Sprintf("version: 1\nendpoint: %s\nstate_file: %s\n%s",
		endpoint, filepath.Join(dir, "state.yaml"), extra)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
	return dir
}
