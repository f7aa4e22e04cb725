package stats_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/stats"
	"github.com/rileyhilliard/sysdash/internal/stats/statstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, base string, opts ...stats.Option) *stats.Client {
	t.Helper()
	c, err := stats.NewClient(base, append([]stats.Option{stats.WithLogger(logger.Noop())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, base := range []string{"", "localhost:5000", "://nope"} {
		_, err := stats.NewClient(base)
		require.Error(t, err, base)
		assert.True(t, errors.IsCode(err, errors.ErrConfig), base)
	}
}

func TestClient_Snapshot(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()
	srv.SetSnapshot(stats.Snapshot{CPU: 42, MemoryPercent: 60, MemoryUsed: "3.2GB", DiskPercent: 77})

	snap, err := newClient(t, srv.URL).Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42.0, snap.CPU)
	assert.Equal(t, 60.0, snap.MemoryPercent)
	assert.Equal(t, stats.Text("3.2GB"), snap.MemoryUsed)
	assert.Equal(t, 77.0, snap.DiskPercent)
	assert.Equal(t, 1, srv.Hits("/api/stats"))
}

func TestClient_SendsRequestID(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = c.Snapshot(context.Background())
	require.NoError(t, err)

	ids := srv.RequestIDs()
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, perr := uuid.Parse(id)
		assert.NoError(t, perr)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestClient_History(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()
	srv.SetHistory(statstest.Samples(10))

	samples, err := newClient(t, srv.URL).History(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, srv.LastLimit())
	require.Len(t, samples, 3)
	assert.Equal(t, "2024-01-01 12:00:07", samples[0].Timestamp, "newest three, oldest first")
	assert.Equal(t, "2024-01-01 12:00:09", samples[2].Timestamp)
}

func TestClient_BasePathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"cpu": 1}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL+"/monitor/").Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/monitor/api/stats", gotPath)
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-2xx is a status error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		srv.SetStatus("/api/stats", http.StatusInternalServerError)

		_, err := newClient(t, srv.URL).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrStatus))
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("bad body is a decode error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		srv.SetRawBody("/api/stats", "<html>oops</html>")

		_, err := newClient(t, srv.URL).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDecode))
	})

	t.Run("trailing data is a decode error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		srv.SetRawBody("/api/stats", `{"cpu":42} <html>oops`)

		_, err := newClient(t, srv.URL).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDecode))
	})

	t.Run("null snapshot is a decode error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		srv.SetRawBody("/api/stats", "null")

		snap, err := newClient(t, srv.URL).Snapshot(context.Background())
		require.Error(t, err)
		assert.Nil(t, snap)
		assert.True(t, errors.IsCode(err, errors.ErrDecode))
	})

	t.Run("null history is a decode error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		srv.SetRawBody("/api/history", "null")

		_, err := newClient(t, srv.URL).History(context.Background(), 5)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDecode))
	})

	t.Run("unreachable host is a transport error", func(t *testing.T) {
		srv := statstest.New()
		url := srv.URL
		srv.Close()

		_, err := newClient(t, url).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrTransport))
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		srv := statstest.New()
		defer srv.Close()
		release := make(chan struct{})
		defer close(release)
		srv.OnRequest(func(string) { <-release })

		_, err := newClient(t, srv.URL, stats.WithTimeout(50*time.Millisecond)).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrTransport))
	})
}

func TestClient_Observer(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()
	srv.SetStatus("/api/history", http.StatusBadGateway)

	var endpoints []string
	var failures int
	c := newClient(t, srv.URL, stats.WithObserver(func(endpoint string, _ time.Duration, err error) {
		endpoints = append(endpoints, endpoint)
		if err != nil {
			failures++
		}
	}))

	_, _ = c.Snapshot(context.Background())
	_, _ = c.History(context.Background(), 5)

	assert.Equal(t, []string{"/api/stats", "/api/history"}, endpoints)
	assert.Equal(t, 1, failures)
}

func TestClient_WithDialContext(t *testing.T) {
	srv := statstest.New()
	defer srv.Close()

	var dialed string
	var d net.Dialer
	c := newClient(t, "http://stats.internal:5000", stats.WithDialContext(func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialed = addr
		return d.DialContext(ctx, network, srv.Listener.Addr().String())
	}))

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stats.internal:5000", dialed)
}
