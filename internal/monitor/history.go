package monitor

import (
	"sync"

	"github.com/rileyhilliard/sysdash/internal/stats"
)

// DefaultHistorySize is the number of snapshots kept for live sparklines.
const DefaultHistorySize = 60

// History keeps recent snapshot values in ring buffers for the live
// page's sparklines. It is unrelated to /api/history, which the server
// owns.
type History struct {
	mu      sync.RWMutex
	size    int
	cpu     *ringBuffer
	mem     *ringBuffer
	disk    *ringBuffer
	netUp   *ringBuffer
	netDown *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history holding size samples per metric.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	h := &History{size: size}
	h.reset()
	return h
}

func (h *History) reset() {
	h.cpu = newRingBuffer(h.size)
	h.mem = newRingBuffer(h.size)
	h.disk = newRingBuffer(h.size)
	h.netUp = newRingBuffer(h.size)
	h.netDown = newRingBuffer(h.size)
}

// Push records a snapshot.
func (h *History) Push(snap *stats.Snapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.cpu.push(snap.CPU)
	h.mem.push(snap.MemoryPercent)
	h.disk.push(snap.DiskPercent)
	h.netUp.push(snap.NetUp)
	h.netDown.push(snap.NetDown)
}

// CPU returns up to count CPU values, oldest first.
func (h *History) CPU(count int) []float64 {
	return h.last(h.cpu, count)
}

// Memory returns up to count memory percentages, oldest first.
func (h *History) Memory(count int) []float64 {
	return h.last(h.mem, count)
}

// Disk returns up to count disk percentages, oldest first.
func (h *History) Disk(count int) []float64 {
	return h.last(h.disk, count)
}

// Network returns up to count upload and download rates, oldest first.
func (h *History) Network(count int) (up, down []float64) {
	return h.last(h.netUp, count), h.last(h.netDown, count)
}

func (h *History) last(r *ringBuffer, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return r.getLast(count)
}

// Count returns how many snapshots are stored.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

// Clear drops all samples.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reset()
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
