// Package prefs is a small persisted key-value store with cookie semantics:
// every entry carries a path, an expiry derived from a max-age, and a
// SameSite policy. Expired entries read as absent.
package prefs

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"gopkg.in/yaml.v3"
)

// SameSite mirrors the cookie attribute of the same name.
type SameSite string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
	SameSiteNone   SameSite = "None"
)

// Options control how a value is stored.
type Options struct {
	Path     string
	MaxAge   time.Duration
	SameSite SameSite
}

// Entry is a stored value with its attributes.
type Entry struct {
	Value    string    `yaml:"value"`
	Path     string    `yaml:"path"`
	Expires  time.Time `yaml:"expires,omitempty"`
	SameSite SameSite  `yaml:"same_site,omitempty"`
}

// Expired reports whether the entry has passed its expiry at now.
// Entries without an expiry never expire.
func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// Cookie renders the entry as an HTTP cookie named name, with Max-Age
// counted from now.
func (e Entry) Cookie(name string, now time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:  name,
		Value: e.Value,
		Path:  e.Path,
	}
	if !e.Expires.IsZero() {
		c.MaxAge = int(e.Expires.Sub(now).Seconds())
		if c.MaxAge <= 0 {
			c.MaxAge = -1
		}
	}
	switch e.SameSite {
	case SameSiteLax:
		c.SameSite = http.SameSiteLaxMode
	case SameSiteStrict:
		c.SameSite = http.SameSiteStrictMode
	case SameSiteNone:
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// Store is a persisted key-value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, opts Options) error
}

func newEntry(value string, opts Options, now time.Time) Entry {
	e := Entry{
		Value:    value,
		Path:     opts.Path,
		SameSite: opts.SameSite,
	}
	if e.Path == "" {
		e.Path = "/"
	}
	if opts.MaxAge > 0 {
		e.Expires = now.Add(opts.MaxAge)
	}
	return e
}

// MemoryStore keeps entries in memory only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (s *MemoryStore) Get(key string) (string, bool) {
	e, ok := s.Entry(key)
	return e.Value, ok
}

// Entry returns the full entry for key if present and not expired.
func (s *MemoryStore) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.Expired(s.now()) {
		return Entry{}, false
	}
	return e, true
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = newEntry(value, opts, s.now())
	return nil
}

// stateFile is the on-disk layout of a FileStore.
type stateFile struct {
	Entries map[string]Entry `yaml:"entries"`
}

// FileStore persists entries to a YAML file. Every Get re-reads the file so
// changes made by another sysdash process (e.g. `sysdash theme dark`) are
// picked up.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by the file at path.
// The file and its directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key if present and not expired.
// A missing or unreadable file reads as empty.
func (s *FileStore) Get(key string) (string, bool) {
	e, ok := s.Entry(key)
	return e.Value, ok
}

// Entry returns the full entry for key if present and not expired.
func (s *FileStore) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return Entry{}, false
	}
	e, ok := state.Entries[key]
	if !ok || e.Expired(s.now()) {
		return Entry{}, false
	}
	return e, true
}

// Set stores value under key and prunes expired entries.
func (s *FileStore) Set(key, value string, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		// A corrupt file shouldn't block writing a fresh preference.
		state = &stateFile{Entries: make(map[string]Entry)}
	}

	now := s.now()
	for k, e := range state.Entries {
		if e.Expired(now) {
			delete(state.Entries, k)
		}
	}
	state.Entries[key] = newEntry(value, opts, now)

	return s.save(state)
}

// Delete removes key from the store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := state.Entries[key]; !ok {
		return nil
	}
	delete(state.Entries, key)
	return s.save(state)
}

// load reads the state file. Must be called with s.mu held.
func (s *FileStore) load() (*stateFile, error) {
	state := &stateFile{Entries: make(map[string]Entry)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't read preferences at %s", s.path),
			"Check the file permissions")
	}

	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Preferences file %s is not valid YAML", s.path),
			"Delete the file to reset your preferences")
	}
	if state.Entries == nil {
		state.Entries = make(map[string]Entry)
	}
	return state, nil
}

// save writes the state file atomically. Must be called with s.mu held.
func (s *FileStore) save(state *stateFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't create %s", dir),
			"Check directory permissions")
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Can't encode preferences", "")
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't write preferences in %s", dir),
			"Check directory permissions")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore, "Can't write preferences", "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore, "Can't write preferences", "")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't replace %s", s.path), "")
	}
	return nil
}

// DefaultPath returns ~/.config/sysdash/state.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".config", "sysdash", "state.yaml")
}
