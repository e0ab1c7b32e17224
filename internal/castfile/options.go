package castfile

import (
	"github.com/dshills/castedit/internal/logging"
	"github.com/dshills/castedit/internal/watcher"
)

// Option configures a CastFile during Open.
type Option func(*CastFile)

// WithLogger sets the logger used for skipped lines and save progress.
func WithLogger(l *logging.Logger) Option {
	return func(f *CastFile) {
		f.log = l
	}
}

// WithWatcher enables detection of external changes to the source file.
// The watcher stays owned by the caller but its events are consumed by
// the CastFile, so it must not be shared.
func WithWatcher(w watcher.Watcher) Option {
	return func(f *CastFile) {
		f.watcher = w
	}
}

// WithAtomicSave selects whether saves go through a temporary file that
// is renamed over the destination. Saves onto the source file are always
// atomic.
func WithAtomicSave(atomic bool) Option {
	return func(f *CastFile) {
		f.atomicSave = atomic
	}
}
