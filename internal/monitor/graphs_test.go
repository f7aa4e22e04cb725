package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so tests can assert on glyphs and text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name   string
		val    float64
		minVal float64
		maxVal float64
		want   float64
	}{
		{
			name:   "middle value",
			val:    50,
			minVal: 0,
			maxVal: 100,
			want:   0.5,
		},
		{
			name:   "min value",
			val:    0,
			minVal: 0,
			maxVal: 100,
			want:   0,
		},
		{
			name:   "max value",
			val:    100,
			minVal: 0,
			maxVal: 100,
			want:   1,
		},
		{
			name:   "equal min max returns 0.5",
			val:    50,
			minVal: 50,
			maxVal: 50,
			want:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeValue(tt.val, tt.minVal, tt.maxVal)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name string
		val  int
		max  int
		want int
	}{
		{name: "within range", val: 5, max: 10, want: 5},
		{name: "at max", val: 10, max: 10, want: 10},
		{name: "over max", val: 15, max: 10, want: 10},
		{name: "negative clamped to zero", val: -5, max: 10, want: 0},
		{name: "zero", val: 0, max: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampInt(tt.val, tt.max)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResampleData(t *testing.T) {
	tests := []struct {
		name       string
		data       []float64
		targetSize int
		wantLen    int
		wantNil    bool
	}{
		{
			name:       "empty data returns nil",
			data:       []float64{},
			targetSize: 10,
			wantNil:    true,
		},
		{
			name:       "zero target returns nil",
			data:       []float64{1, 2, 3},
			targetSize: 0,
			wantNil:    true,
		},
		{
			name:       "negative target returns nil",
			data:       []float64{1, 2, 3},
			targetSize: -5,
			wantNil:    true,
		},
		{
			name:       "same size returns original",
			data:       []float64{1, 2, 3},
			targetSize: 3,
			wantLen:    3,
		},
		{
			name:       "single value fills target",
			data:       []float64{42},
			targetSize: 5,
			wantLen:    5,
		},
		{
			name:       "downsampling reduces size",
			data:       []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			targetSize: 5,
			wantLen:    5,
		},
		{
			name:       "upsampling increases size",
			data:       []float64{0, 100},
			targetSize: 5,
			wantLen:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resampleData(tt.data, tt.targetSize)
			if tt.wantNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Len(t, result, tt.wantLen)
			}
		})
	}
}

func TestResampleData_DownsamplingPreservesPeaks(t *testing.T) {
	// Data with a spike in the middle
	data := []float64{10, 10, 10, 100, 10, 10, 10, 10, 10, 10}

	// Downsample to 5 points - the spike should be preserved
	result := resampleData(data, 5)

	require.Len(t, result, 5)

	// The bucket containing 100 should have max=100
	hasSpike := false
	for _, v := range result {
		if v == 100 {
			hasSpike = true
			break
		}
	}
	assert.True(t, hasSpike, "downsampling should preserve peak values")
}

func TestResampleData_UpsamplingInterpolates(t *testing.T) {
	data := []float64{0, 100}
	result := resampleData(data, 5)

	require.Len(t, result, 5)

	// Should interpolate: 0, 25, 50, 75, 100
	assert.InDelta(t, 0, result[0], 0.1)
	assert.InDelta(t, 25, result[1], 0.1)
	assert.InDelta(t, 50, result[2], 0.1)
	assert.InDelta(t, 75, result[3], 0.1)
	assert.InDelta(t, 100, result[4], 0.1)
}

func usageChart(labels []string, cpu, ram, disk []float64) *LineChart {
	return NewLineChart(ChartConfig{
		Slot:   SlotUsage,
		Labels: labels,
		Series: []Series{
			{Name: "CPU", Data: cpu},
			{Name: "RAM", Data: ram},
			{Name: "Disk", Data: disk},
		},
		Max:        100,
		FixedScale: true,
		Unit:       PercentUnit,
		Smooth:     true,
	}).(*LineChart)
}

func TestLineChart_RenderDimensions(t *testing.T) {
	c := usageChart([]string{"12:00:00", "12:00:01", "12:00:02"}, []float64{10, 50, 90}, []float64{40, 40, 40}, []float64{70, 70, 70})

	out := c.Render(60, 12, -1)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 12)
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
	assert.Contains(t, lines[0], "CPU")
	assert.Contains(t, lines[0], "RAM")
	assert.Contains(t, lines[0], "Disk")
	assert.Contains(t, lines[1], "100%", "top tick is the fixed maximum")
	assert.Contains(t, lines[10], "0%", "bottom tick is the fixed minimum")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[11]), "12:00:00"))
	assert.True(t, strings.HasSuffix(lines[11], "12:00:02"))
}

func TestLineChart_PlotsBraille(t *testing.T) {
	c := usageChart([]string{"a", "b"}, []float64{0, 100}, nil, nil)
	out := c.Render(30, 8, -1)

	hasBraille := false
	for _, r := range out {
		if r > brailleBase && r <= brailleBase+0xFF {
			hasBraille = true
			break
		}
	}
	assert.True(t, hasBraille)
}

func TestLineChart_Cursor(t *testing.T) {
	c := usageChart([]string{"a", "b", "c"}, []float64{0, 0, 0}, nil, nil)

	assert.NotContains(t, c.Render(40, 10, -1), "│")
	assert.Contains(t, c.Render(40, 10, 1), "│")
	assert.NotContains(t, c.Render(40, 10, 3), "│", "out of range cursor is ignored")
}

func TestLineChart_Bounds(t *testing.T) {
	fixed := usageChart(nil, []float64{250}, nil, nil)
	lo, hi := fixed.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 100.0, hi)

	auto := NewLineChart(ChartConfig{Series: []Series{{Data: []float64{3, 17}}, {Data: []float64{42}}}}).(*LineChart)
	lo, hi = auto.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 50.0, hi, "auto scale shares one axis across series")

	empty := NewLineChart(ChartConfig{}).(*LineChart)
	lo, hi = empty.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestLineChart_Tooltip(t *testing.T) {
	c := usageChart([]string{"12:00:00", "12:00:01"}, []float64{42, 43}, []float64{60, 61}, []float64{77, 78})

	tip := c.Tooltip(0)
	assert.Contains(t, tip, "12:00:00")
	assert.Contains(t, tip, "CPU 42%")
	assert.Contains(t, tip, "RAM 60%")
	assert.Contains(t, tip, "Disk 77%")

	assert.Empty(t, c.Tooltip(-1))
	assert.Empty(t, c.Tooltip(2))

	net := NewLineChart(ChartConfig{
		Labels: []string{"12:00:00"},
		Series: []Series{{Name: "Upload", Data: []float64{1.5}}, {Name: "Download", Data: []float64{3}}},
		Unit:   NetworkUnit,
	})
	assert.Contains(t, net.Tooltip(0), "Upload 1.5 KB/s")
	assert.Contains(t, net.Tooltip(0), "Download 3 KB/s")
}

func TestLineChart_Destroy(t *testing.T) {
	c := usageChart([]string{"a"}, []float64{1}, nil, nil)
	c.Destroy()

	assert.True(t, c.Destroyed())
	assert.Empty(t, c.Render(40, 10, 0))
	assert.Empty(t, c.Tooltip(0))
}

func TestLineChart_TinyArea(t *testing.T) {
	c := usageChart([]string{"a", "b"}, []float64{1, 2}, nil, nil)
	assert.NotPanics(t, func() {
		c.Render(1, 1, 0)
		c.Render(3, 2, 1)
	})
	assert.Empty(t, c.Render(0, 10, 0))
}

func TestAxisTickRows(t *testing.T) {
	assert.Equal(t, []int{0}, axisTickRows(1))
	assert.Equal(t, []int{0, 1}, axisTickRows(2))
	assert.Equal(t, []int{0, 2, 5, 7, 9}, axisTickRows(10))
}

func TestNiceCeil(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{0.3, 0.5},
		{1, 1},
		{7, 10},
		{42, 50},
		{120, 200},
		{999, 1000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, niceCeil(tt.in), 1e-9, "niceCeil(%v)", tt.in)
	}
}

func TestFormatAxis(t *testing.T) {
	assert.Equal(t, "100%", formatAxis(100, PercentUnit))
	assert.Equal(t, "50", formatAxis(50, NetworkUnit))
	assert.Equal(t, "2.5", formatAxis(2.5, NetworkUnit))
}

func TestRenderMiniSparkline(t *testing.T) {
	assert.Empty(t, RenderMiniSparkline(nil, 10, ""))
	assert.Empty(t, RenderMiniSparkline([]float64{1}, 0, ""))

	out := RenderMiniSparkline([]float64{0, 100}, 5, "")
	assert.Equal(t, 5, lipgloss.Width(out))
	assert.True(t, strings.HasSuffix(out, "▁█"), "short history is right-aligned")

	long := RenderMiniSparkline([]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 4, "")
	assert.Equal(t, 4, lipgloss.Width(long))
}
