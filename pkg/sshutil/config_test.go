package sshutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestHostsFromFile(t *testing.T) {
	path := writeSSHConfig(t, `
Host statsbox
    HostName 192.168.1.100
    User admin
    Port 2222

Host gpu-box
    HostName gpu.example.com
    User ubuntu

Host *
    ServerAliveInterval 60

Host work-*
    User workuser
`)

	hosts, err := HostsFromFile(path)
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "gpu-box", hosts[0].Alias)
	assert.Equal(t, "gpu.example.com", hosts[0].Hostname)
	assert.Equal(t, "", hosts[0].Port)

	assert.Equal(t, "statsbox", hosts[1].Alias)
	assert.Equal(t, "admin", hosts[1].User)
	assert.Equal(t, "2222", hosts[1].Port)
}

func TestHostsFromFile_Missing(t *testing.T) {
	hosts, err := HostsFromFile("/nonexistent/config")
	assert.NoError(t, err)
	assert.Nil(t, hosts)
}

func TestHostsFromFile_StopsAtMatch(t *testing.T) {
	path := writeSSHConfig(t, `
Host before-match
    HostName before.example.com

Match host *.example.com
    User matchuser

Host after-match
    HostName after.example.com
`)

	hosts, err := HostsFromFile(path)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "before-match", hosts[0].Alias)
}

func TestHostsFromFile_DuplicateAndMultiplePatterns(t *testing.T) {
	path := writeSSHConfig(t, `
Host alpha beta
    HostName shared.example.com

Host alpha
    User other
`)

	hosts, err := HostsFromFile(path)
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "alpha", hosts[0].Alias)
	assert.Equal(t, "beta", hosts[1].Alias)
	assert.Equal(t, "shared.example.com", hosts[1].Hostname)
}

func TestHostEntry_Description(t *testing.T) {
	tests := []struct {
		name     string
		entry    HostEntry
		expected string
	}{
		{
			name:     "full entry",
			entry:    HostEntry{Alias: "statsbox", Hostname: "10.0.0.5", User: "admin", Port: "2222"},
			expected: "10.0.0.5, user: admin, port: 2222",
		},
		{
			name:     "default port hidden",
			entry:    HostEntry{Alias: "statsbox", Hostname: "10.0.0.5", Port: "22"},
			expected: "10.0.0.5",
		},
		{
			name:     "hostname same as alias",
			entry:    HostEntry{Alias: "statsbox", Hostname: "statsbox", User: "admin"},
			expected: "user: admin",
		},
		{
			name:     "alias only",
			entry:    HostEntry{Alias: "statsbox"},
			expected: "statsbox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Description())
		})
	}
}
