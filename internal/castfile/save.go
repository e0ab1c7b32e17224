package castfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/castedit/internal/cast"
)

const writeBufferSize = 256 * 1024

// WriteTo streams the edited file to w: the re-encoded header followed by
// the body with pending edits applied. Untouched bytes are copied verbatim.
func (f *CastFile) WriteTo(w io.Writer) (int64, error) {
	if f.closed {
		return 0, ErrClosed
	}

	cw := &countingWriter{w: w}
	header, err := f.header.Encode()
	if err != nil {
		return 0, fmt.Errorf("%w: header: %w", ErrSerialization, err)
	}
	if _, err := cw.Write(append(header, '\n')); err != nil {
		return cw.n, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := f.writeBody(cw); err != nil {
		return cw.n, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return cw.n, nil
}

func (f *CastFile) writeBody(w io.Writer) error {
	var line []byte
	cur := f.bodyStart
	for _, off := range f.overlay.Offsets(f.bodyStart, -1) {
		chain, _ := f.overlay.Get(off)
		if off < cur || chain.IsNoop() {
			continue
		}
		if _, err := w.Write(f.data[cur:off]); err != nil {
			return err
		}
		cur = off

		if off == len(f.data) && off > f.bodyStart && f.data[off-1] != '\n' && chain.Len() > 0 {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		for _, ev := range chain.Modifications {
			line = cast.AppendLine(line[:0], ev)
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		if chain.OriginalDeleted && cur < len(f.data) {
			cur = f.lineEnd(cur)
		}
	}
	_, err := w.Write(f.data[cur:])
	return err
}

// SaveToFile writes the edited file to path.
//
// Atomic saves write a temporary file in the destination directory, sync it
// and rename it over path, so a failed save never leaves a partial file.
// Saving onto the source is always atomic: the mapping keeps the replaced
// file alive and the CastFile stays usable afterwards.
func (f *CastFile) SaveToFile(path string) error {
	if f.closed {
		return ErrClosed
	}
	if f.stale.Load() {
		return fmt.Errorf("%w: %s", ErrSourceChanged, f.path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if abs == f.path || f.atomicSave {
		err = f.saveAtomic(abs)
	} else {
		err = f.saveDirect(abs)
	}
	if err != nil {
		f.log.Error("save %s: %v", abs, err)
		return err
	}
	f.log.Info("saved %s", abs)
	return nil
}

func (f *CastFile) saveDirect(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.writeFile(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (f *CastFile) saveAtomic(path string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(tmp)
	}

	if err := f.writeFile(out); err != nil {
		cleanup()
		return err
	}
	if err := out.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if path != f.path {
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		return nil
	}

	// The saved file becomes the expected content of the source path before
	// it lands there so the watcher does not report our own rename.
	info, err := os.Stat(tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	prev := f.source.Swap(&info)
	if err := os.Rename(tmp, path); err != nil {
		f.source.Store(prev)
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (f *CastFile) writeFile(out *os.File) error {
	bw := bufio.NewWriterSize(out, writeBufferSize)
	if _, err := f.WriteTo(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
