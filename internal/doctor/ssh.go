package doctor

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/pkg/sshutil"
)

// SSHConfigCheck looks the tunnel host up in ~/.ssh/config.
type SSHConfigCheck struct {
	Host  string
	Hosts func() ([]sshutil.HostEntry, error) // nil means sshutil.KnownHosts
}

func (c *SSHConfigCheck) Name() string     { return "ssh_config" }
func (c *SSHConfigCheck) Category() string { return CategorySSH }

func (c *SSHConfigCheck) Run(ctx context.Context) CheckResult {
	// Explicit hostnames don't need an alias.
	if strings.ContainsAny(c.Host, ".@:") {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Tunnel host " + c.Host + " (direct)",
		}
	}

	list := c.Hosts
	if list == nil {
		list = sshutil.KnownHosts
	}
	hosts, err := list()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Cannot read ~/.ssh/config: " + err.Error(),
			Suggestion: "Check the file's syntax and permissions",
		}
	}

	for _, h := range hosts {
		if h.Alias == c.Host {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: "Tunnel host " + h.Alias + " (" + h.Description() + ")",
			}
		}
	}

	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "'" + c.Host + "' is not an alias in ~/.ssh/config",
		Suggestion: "Add a Host entry for it, or use a full hostname",
	}
}

func (c *SSHConfigCheck) Fix() error { return nil }

// SSHTunnelCheck opens and closes a tunnel to Host.
type SSHTunnelCheck struct {
	Host    string
	Timeout time.Duration
	Dial    func(ctx context.Context, host string, timeout time.Duration) (io.Closer, error) // nil means sshutil.Dial
}

func (c *SSHTunnelCheck) Name() string     { return "ssh_tunnel" }
func (c *SSHTunnelCheck) Category() string { return CategorySSH }

func (c *SSHTunnelCheck) Run(ctx context.Context) CheckResult {
	dial := c.Dial
	if dial == nil {
		dial = dialTunnel
	}

	start := time.Now()
	tun, err := dial(ctx, c.Host, c.Timeout)
	if err != nil {
		suggestion := "Check that the host is reachable: ssh " + c.Host
		var e *errors.Error
		if errors.As(err, &e) && e.Suggestion != "" {
			suggestion = e.Suggestion
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Tunnel to " + c.Host + " failed: " + errors.Short(err),
			Suggestion: suggestion,
		}
	}
	_ = tun.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Tunnel to " + c.Host + " opened in " + time.Since(start).Round(time.Millisecond).String(),
	}
}

func (c *SSHTunnelCheck) Fix() error { return nil }

func dialTunnel(ctx context.Context, host string, timeout time.Duration) (io.Closer, error) {
	tun, err := sshutil.Dial(ctx, host, timeout)
	if err != nil {
		return nil, err
	}
	return tun, nil
}

// NewSSHChecks returns the tunnel checks, or nil when host is empty.
func NewSSHChecks(host string, timeout time.Duration) []Check {
	if host == "" {
		return nil
	}
	return []Check{
		&SSHConfigCheck{Host: host},
		&SSHTunnelCheck{Host: host, Timeout: timeout},
	}
}
