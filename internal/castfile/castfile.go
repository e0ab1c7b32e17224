// Package castfile edits asciicast v2 files without loading them.
//
// The original file is memory mapped read-only and never changed in place.
// Edits are recorded in an overlay keyed by the byte offset of the original
// line they apply before. Reads merge the overlay with events parsed out of
// a window of the mapping; saves stream the merged result to a new file.
package castfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/logging"
	"github.com/dshills/castedit/internal/overlay"
	"github.com/dshills/castedit/internal/watcher"
)

// CastFile is an open recording with pending edits.
//
// A CastFile is not safe for concurrent use. Reads may run concurrently
// with each other but every edit and save must be serialized by the caller.
type CastFile struct {
	path   string
	header cast.Header

	data      []byte
	bodyStart int
	unmap     func() error

	overlay *overlay.Store

	log        *logging.Logger
	watcher    watcher.Watcher
	atomicSave bool

	// source is the file identity the mapping is trusted to match.
	source atomic.Pointer[os.FileInfo]
	stale  atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Open maps the file at path and decodes its header.
func Open(path string, opts ...Option) (*CastFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	cf := &CastFile{
		path:       abs,
		overlay:    overlay.New(),
		atomicSave: true,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cf)
	}
	cf.log = logging.OrNull(cf.log).WithComponent("castfile")

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	cf.source.Store(&info)

	data, unmap, err := mapFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, abs, err)
	}
	cf.data = data
	cf.unmap = unmap

	headerEnd := bytes.IndexByte(data, '\n')
	if headerEnd < 0 {
		headerEnd = len(data)
		cf.bodyStart = len(data)
	} else {
		cf.bodyStart = headerEnd + 1
	}

	header, err := cast.ParseHeader(data[:headerEnd])
	if err != nil {
		_ = unmap()
		if errors.Is(err, cast.ErrInvalidVersion) {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDeserialization, abs, err)
	}
	cf.header = header

	if cf.watcher != nil {
		if err := cf.watch(); err != nil {
			cf.log.Warn("cannot watch %s: %v", abs, err)
			cf.watcher = nil
		}
	}

	cf.log.Debug("opened %s (%d bytes, body at %d)", abs, len(data), cf.bodyStart)
	return cf, nil
}

// Close releases the mapping and stops watching the source.
func (f *CastFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.done)

	if f.watcher != nil {
		_ = f.watcher.Unwatch(f.path)
	}
	f.wg.Wait()

	err := f.unmap()
	f.data = nil
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Path returns the absolute path of the source file.
func (f *CastFile) Path() string {
	return f.path
}

// Header returns the decoded header.
func (f *CastFile) Header() cast.Header {
	return f.header
}

// Size returns the size of the source file in bytes.
func (f *CastFile) Size() int {
	return len(f.data)
}

// BodyStart returns the offset of the first event line.
func (f *CastFile) BodyStart() int {
	return f.bodyStart
}

// Modified reports whether there are pending edits with a visible effect.
func (f *CastFile) Modified() bool {
	return f.overlay.Modified()
}

// Stats summarizes the pending edits.
func (f *CastFile) Stats() overlay.Stats {
	return f.overlay.Stats()
}

// Stale reports whether the source changed on disk since it was opened.
// It is only tracked when the file was opened with WithWatcher.
func (f *CastFile) Stale() bool {
	return f.stale.Load()
}

// Fraction returns the scroll fraction at which GetLines starts with the
// line at offset.
func (f *CastFile) Fraction(offset int) float64 {
	if len(f.data) == 0 || offset <= f.bodyStart {
		return 0
	}
	if offset >= len(f.data) {
		return 1
	}
	return (float64(offset-1) + 0.5) / float64(len(f.data))
}

// validOffset reports whether off is the start of a body line or the end
// of the file.
func (f *CastFile) validOffset(off int) bool {
	if off < f.bodyStart || off > len(f.data) {
		return false
	}
	return off == f.bodyStart || f.data[off-1] == '\n' || off == len(f.data)
}

// lineEnd returns the offset just past the line starting at off.
func (f *CastFile) lineEnd(off int) int {
	if i := bytes.IndexByte(f.data[off:], '\n'); i >= 0 {
		return off + i + 1
	}
	return len(f.data)
}
