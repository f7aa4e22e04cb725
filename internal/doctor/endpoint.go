package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// Fetcher is the part of the stats client the endpoint checks use.
type Fetcher interface {
	Snapshot(ctx context.Context) (*stats.Snapshot, error)
	History(ctx context.Context, limit int) ([]stats.HistorySample, error)
}

// StatsEndpointCheck fetches one snapshot.
type StatsEndpointCheck struct {
	Fetcher  Fetcher
	Endpoint string
	SetupErr error // Set when the client couldn't be built (e.g. tunnel failed)
}

func (c *StatsEndpointCheck) Name() string     { return "endpoint_stats" }
func (c *StatsEndpointCheck) Category() string { return CategoryEndpoint }

func (c *StatsEndpointCheck) Run(ctx context.Context) CheckResult {
	if c.SetupErr != nil || c.Fetcher == nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot reach " + c.Endpoint + ": " + errors.Short(c.SetupErr),
			Suggestion: "Fix the SSH tunnel first",
		}
	}

	start := time.Now()
	snap, err := c.Fetcher.Snapshot(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "GET /api/stats failed: " + errors.Short(err),
			Suggestion: fetchSuggestion(err, c.Endpoint),
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("GET /api/stats answered in %s (cpu %s)",
			time.Since(start).Round(time.Millisecond), stats.FormatPercent(snap.CPU)),
	}
}

func (c *StatsEndpointCheck) Fix() error { return nil }

// HistoryEndpointCheck fetches one history sample. Failures are warnings:
// the live page still works without history.
type HistoryEndpointCheck struct {
	Fetcher  Fetcher
	Endpoint string
}

func (c *HistoryEndpointCheck) Name() string     { return "endpoint_history" }
func (c *HistoryEndpointCheck) Category() string { return CategoryEndpoint }

func (c *HistoryEndpointCheck) Run(ctx context.Context) CheckResult {
	if c.Fetcher == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: "Skipped: no connection to " + c.Endpoint,
		}
	}

	samples, err := c.Fetcher.History(ctx, 1)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "GET /api/history failed: " + errors.Short(err),
			Suggestion: "The history page needs /api/history; the live page still works",
		}
	}
	if len(samples) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "GET /api/history returned no samples yet",
			Suggestion: "Charts stay empty until the service has recorded history",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "GET /api/history: latest sample at " + samples[len(samples)-1].TimeOfDay(),
	}
}

func (c *HistoryEndpointCheck) Fix() error { return nil }

// NewEndpointChecks returns the endpoint checks for f. setupErr is the error
// from building the client, if any.
func NewEndpointChecks(f Fetcher, endpoint string, setupErr error) []Check {
	if setupErr != nil {
		f = nil
	}
	return []Check{
		&StatsEndpointCheck{Fetcher: f, Endpoint: endpoint, SetupErr: setupErr},
		&HistoryEndpointCheck{Fetcher: f, Endpoint: endpoint},
	}
}

func fetchSuggestion(err error, endpoint string) string {
	switch {
	case errors.IsCode(err, errors.ErrTransport):
		return "Check the service is running and reachable at " + endpoint
	case errors.IsCode(err, errors.ErrStatus):
		return "The service answered with an error status; check its logs"
	case errors.IsCode(err, errors.ErrDecode):
		return "The response isn't a stats snapshot; check the endpoint URL"
	default:
		return "Run with --verbose for details"
	}
}
