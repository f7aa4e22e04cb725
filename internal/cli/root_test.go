package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"dashboard", "history", "stats", "theme", "init", "doctor", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "endpoint", "ssh", "timeout", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestLoadSettings_FromFile(t *testing.T) {
	dir := useConfig(t, "http://10.0.0.5:5000", "interval: 2s\nhistory_limit: 120\n")

	s, err := loadSettings(newTestCommand())
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:5000", s.cfg.Endpoint)
	assert.Equal(t, 2*time.Second, s.cfg.Interval)
	assert.Equal(t, 120, s.cfg.HistoryLimit)
	assert.Equal(t, config.DefaultTimeout, s.cfg.Timeout)
	assert.Equal(t, cfgFile, s.path)
	assert.Contains(t, s.cfg.StateFile, dir)
	assert.NotNil(t, s.v)
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	useConfig(t, "http://10.0.0.5:5000", "interval: 2s\n")

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("endpoint", "http://flag.local:9000"))
	require.NoError(t, cmd.Flags().Set("interval", "750ms"))
	require.NoError(t, cmd.Flags().Set("limit", "300"))

	s, err := loadSettings(cmd)
	require.NoError(t, err)

	assert.Equal(t, "http://flag.local:9000", s.cfg.Endpoint)
	assert.Equal(t, 750*time.Millisecond, s.cfg.Interval)
	assert.Equal(t, 300, s.cfg.HistoryLimit)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	useConfig(t, "http://10.0.0.5:5000", "")
	t.Setenv("SYSDASH_ENDPOINT", "http://env.local:5000")

	s, err := loadSettings(newTestCommand())
	require.NoError(t, err)
	assert.Equal(t, "http://env.local:5000", s.cfg.Endpoint)
}

func TestLoadSettings_UnsetFlagsKeepDefaults(t *testing.T) {
	useConfig(t, "http://10.0.0.5:5000", "")

	s, err := loadSettings(newTestCommand())
	require.NoError(t, err)

	// Zero flag defaults must not clobber config defaults.
	assert.Equal(t, config.DefaultInterval, s.cfg.Interval)
	assert.Equal(t, config.DefaultTimeout, s.cfg.Timeout)
	assert.Equal(t, config.DefaultHistoryLimit, s.cfg.HistoryLimit)
}

func TestLoadSettings_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	orig := cfgFile
	cfgFile = ""
	t.Cleanup(func() { cfgFile = orig })

	s, err := loadSettings(newTestCommand())
	require.NoError(t, err)

	assert.Empty(t, s.path)
	assert.Equal(t, config.DefaultEndpoint, s.cfg.Endpoint)
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	useConfig(t, "http://10.0.0.5:5000", "interval: 100ms\n")

	_, err := loadSettings(newTestCommand())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadSettings_MissingExplicitConfig(t *testing.T) {
	orig := cfgFile
	cfgFile = "/nonexistent/.sysdash.yaml"
	t.Cleanup(func() { cfgFile = orig })

	_, err := loadSettings(newTestCommand())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestExecuteContext_ExitCodes(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		versionShort = false
	}()

	rootCmd.SetArgs([]string{"version", "--short"})
	assert.Equal(t, 0, ExecuteContext(context.Background()))
	assert.Equal(t, GetVersion(), strings.TrimSpace(out.String()))

	rootCmd.SetArgs([]string{"completion", "tcsh"})
	assert.Equal(t, 1, ExecuteContext(context.Background()))
}
