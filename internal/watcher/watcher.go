// Package watcher reports external changes to individual files.
//
// Files are watched through their parent directory so that editors and
// tools that replace a file by renaming a temporary over it are still
// observed. Only events for explicitly watched files are delivered.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op is a bitmask of file system operations.
type Op uint32

const (
	// OpCreate indicates a file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed away.
	OpRename
	// OpChmod indicates file permissions changed.
	OpChmod
)

// OpContent covers every operation that can change what a path holds.
const OpContent = OpCreate | OpWrite | OpRemove | OpRename

// String returns a human readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	case 0:
		return "NONE"
	default:
		return "MULTIPLE"
	}
}

// Has reports whether op includes all bits of o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Any reports whether op shares a bit with o.
func (op Op) Any(o Op) bool {
	return op&o != 0
}

// Event is a change to a watched file.
type Event struct {
	// Path is the absolute, cleaned path of the file.
	Path string
	Op   Op
	// Timestamp is when the event was received.
	Timestamp time.Time
}

// Watcher monitors files for changes.
type Watcher interface {
	// Watch starts watching a file. Returns ErrAlreadyWatching if the path
	// is already being watched.
	Watch(path string) error

	// Unwatch stops watching a file.
	Unwatch(path string) error

	// Events returns the channel of change events. It is closed by Close.
	Events() <-chan Event

	// Errors returns the channel of watcher errors. It is closed by Close.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error
}

// Config configures a watcher.
type Config struct {
	// BufferSize is the capacity of the event and error channels.
	BufferSize int
	// Ops selects which operations are delivered.
	Ops Op
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize: 64,
		Ops:        OpContent,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel capacity.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithOps sets which operations are delivered.
func WithOps(ops Op) Option {
	return func(c *Config) {
		c.Ops = ops
	}
}
