package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{name: "logs when SYSDASH_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when SYSDASH_DEBUG is any value", envValue: "true", expectLog: true},
		{name: "does not log when SYSDASH_DEBUG is empty", envValue: "", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("[test]")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] DEBUG: test message arg")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	buf := captureLog(t)

	l := NewEnvLogger("[poller]")
	l.Info("cycle %d ok", 3)
	l.Warn("slow response")
	l.Error("fetch failed")

	out := buf.String()
	assert.Contains(t, out, "[poller] cycle 3 ok")
	assert.Contains(t, out, "[poller] WARN: slow response")
	assert.Contains(t, out, "[poller] ERROR: fetch failed")
}

func TestEnvLogger_NoPrefix(t *testing.T) {
	buf := captureLog(t)

	NewEnvLogger("").Warn("bare")

	assert.Contains(t, buf.String(), "WARN: bare")
	assert.NotContains(t, buf.String(), "  WARN")
}

func TestNoopLogger(t *testing.T) {
	buf := captureLog(t)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String(), "noop logger should not produce any output")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, msgs[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "info msg"}, msgs[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "warn msg"}, msgs[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, msgs[3])

	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.Contains("error", "error"))
	assert.False(t, l.Contains("info", "error"))

	l.Clear()
	assert.Empty(t, l.Messages())
	assert.False(t, l.HasLevel("debug"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Info("worker %d", n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Messages(), 20)
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)

	assert.Equal(t, buf, Default())
	assert.Equal(t, buf, OrDefault(nil))

	other := Noop()
	assert.Equal(t, other, OrDefault(other))
}
