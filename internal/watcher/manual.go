package watcher

import (
	"path/filepath"
	"sync"
	"time"
)

// ManualWatcher is a Watcher whose events are injected with Emit. It is
// useful in tests and for callers that poll for changes themselves.
type ManualWatcher struct {
	mu     sync.Mutex
	files  map[string]bool
	events chan Event
	errors chan error
	ops    Op
	closed bool
}

// NewManualWatcher creates a ManualWatcher.
func NewManualWatcher(opts ...Option) *ManualWatcher {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &ManualWatcher{
		files:  make(map[string]bool),
		events: make(chan Event, config.BufferSize),
		errors: make(chan error, config.BufferSize),
		ops:    config.Ops,
	}
}

// Watch records path as watched.
func (m *ManualWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrWatcherClosed
	}
	if m.files[abs] {
		return ErrAlreadyWatching
	}
	m.files[abs] = true
	return nil
}

// Unwatch forgets path.
func (m *ManualWatcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrWatcherClosed
	}
	if !m.files[abs] {
		return ErrNotWatching
	}
	delete(m.files, abs)
	return nil
}

// Emit delivers an event for path if it is watched and op passes the
// configured filter. It reports whether the event was delivered.
func (m *ManualWatcher) Emit(path string, op Op) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	op &= m.ops
	if op == 0 || m.closed || !m.files[abs] {
		return false
	}
	select {
	case m.events <- Event{Path: abs, Op: op, Timestamp: time.Now()}:
		return true
	default:
		return false
	}
}

// Events returns the event channel.
func (m *ManualWatcher) Events() <-chan Event { return m.events }

// Errors returns the error channel.
func (m *ManualWatcher) Errors() <-chan error { return m.errors }

// Close closes the channels.
func (m *ManualWatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	close(m.errors)
	return nil
}

var _ Watcher = (*ManualWatcher)(nil)
