// Package statstest provides a fake telemetry server for tests.
package statstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// Server is an in-process telemetry endpoint.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	snapshot   stats.Snapshot
	history    []stats.HistorySample
	status     map[string]int
	raw        map[string]string
	hits       map[string]int
	lastLimit  int
	requestIDs []string
	before     func(path string)
}

// New starts a server. Call Close when done.
func New() *Server {
	s := &Server{
		status: make(map[string]int),
		raw:    make(map[string]string),
		hits:   make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.Use(s.record)

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.requestIDs = append(s.requestIDs, r.Header.Get(stats.RequestIDHeader))
		before := s.before
		s.mu.Unlock()

		if before != nil {
			before(r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	s.respond(w, "/api/stats", snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 60
	}

	s.mu.Lock()
	s.lastLimit = limit
	samples := s.history
	if len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	out := append([]stats.HistorySample(nil), samples...)
	s.mu.Unlock()

	s.respond(w, "/api/history", out)
}

func (s *Server) respond(w http.ResponseWriter, path string, body interface{}) {
	s.mu.Lock()
	status := s.status[path]
	raw, hasRaw := s.raw[path]
	s.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hasRaw {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// SetSnapshot sets what /api/stats returns.
func (s *Server) SetSnapshot(snap stats.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// SetHistory sets the full history; /api/history returns the newest limit
// samples of it.
func (s *Server) SetHistory(samples []stats.HistorySample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]stats.HistorySample(nil), samples...)
}

// SetStatus makes path answer with code. Zero or 200 restores normal replies.
func (s *Server) SetStatus(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = code
}

// SetRawBody makes path answer 200 with body verbatim.
func (s *Server) SetRawBody(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[path] = body
}

// OnRequest runs fn before each request is handled. It may block.
func (s *Server) OnRequest(fn func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = fn
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastLimit returns the limit of the most recent history request.
func (s *Server) LastLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLimit
}

// RequestIDs returns the request ID header of every request, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Samples builds n history samples one second apart starting at 12:00:00.
func Samples(n int) []stats.HistorySample {
	out := make([]stats.HistorySample, n)
	for i := range out {
		sec := i % 60
		min := i / 60
		out[i] = stats.HistorySample{
			Timestamp:     "2024-01-01 12:" + pad(min) + ":" + pad(sec),
			CPU:           float64(10 + i),
			MemoryPercent: float64(40 + i%20),
			DiskPercent:   70,
			NetUp:         float64(i) * 1.5,
			NetDown:       float64(i) * 3,
		}
	}
	return out
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
