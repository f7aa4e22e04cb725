package cli

import (
	"context"

	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/stats"
	"github.com/rileyhilliard/sysdash/pkg/sshutil"
)

// newStatsClient builds a stats client for cfg. When cfg.SSH is set the
// client's connections go through an SSH tunnel; the returned cleanup
// closes it and must always be called.
func newStatsClient(ctx context.Context, cfg *config.Config, log logger.Logger, extra ...stats.Option) (*stats.Client, func(), error) {
	opts := []stats.Option{
		stats.WithTimeout(cfg.Timeout),
		stats.WithLogger(log),
	}
	cleanup := func() {}

	if cfg.SSH != "" {
		log.Debug("opening SSH tunnel via %s", cfg.SSH)
		tun, err := sshutil.Dial(ctx, cfg.SSH, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, stats.WithDialContext(tun.DialContext))
		cleanup = func() {
			_ = tun.Close()
			sshutil.CloseAgent()
		}
	}

	client, err := stats.NewClient(cfg.Endpoint, append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, cleanup, nil
}
