package stats

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Snapshot is one reading from /api/stats.
type Snapshot struct {
	CPU           float64 `json:"cpu"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    Text    `json:"memory_used"`
	MemoryTotal   Text    `json:"memory_total,omitempty"`
	MemoryCached  Text    `json:"memory_cached,omitempty"`
	DiskPercent   float64 `json:"disk_percent"`
	LoadAvg       Text    `json:"load_avg,omitempty"`
	OSInfo        Text    `json:"os_info,omitempty"`
	BootTime      Text    `json:"boot_time,omitempty"`
	NetUp         float64 `json:"net_up,omitempty"`
	NetDown       float64 `json:"net_down,omitempty"`
}

// HistorySample is one point from /api/history.
type HistorySample struct {
	Timestamp     string  `json:"timestamp"`
	CPU           float64 `json:"cpu"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	NetUp         float64 `json:"net_up"`
	NetDown       float64 `json:"net_down"`
}

// TimeOfDay returns the time part of the timestamp: whatever follows the
// date, split on a space or a "T". Fractional seconds and zone suffixes are
// kept as sent.
func (h HistorySample) TimeOfDay() string {
	ts := strings.TrimSpace(h.Timestamp)
	if i := strings.IndexAny(ts, " T"); i >= 0 && i < len(ts)-1 {
		return ts[i+1:]
	}
	return ts
}

// Text is a display string the server may send as a JSON string, number,
// boolean, or array of those (joined with spaces, e.g. a load-average triple).
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = string(item)
		}
		*t = Text(strings.Join(parts, " "))
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

// String implements fmt.Stringer.
func (t Text) String() string {
	return string(t)
}

// FormatNumber renders v the way a JavaScript template literal would:
// shortest representation, no trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent renders v with a trailing percent sign.
func FormatPercent(v float64) string {
	return FormatNumber(v) + "%"
}
