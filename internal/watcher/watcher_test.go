package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{0, "NONE"},
		{OpCreate | OpWrite, "MULTIPLE"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOpHasAny(t *testing.T) {
	op := OpWrite | OpChmod
	if !op.Has(OpWrite) || op.Has(OpWrite|OpRemove) {
		t.Error("Has returned wrong result")
	}
	if !op.Any(OpContent) || OpChmod.Any(OpContent) {
		t.Error("Any returned wrong result")
	}
}

func TestManualWatcher(t *testing.T) {
	m := NewManualWatcher(WithBufferSize(2))
	path := filepath.Join(t.TempDir(), "a.cast")

	if m.Emit(path, OpWrite) {
		t.Error("Emit delivered an event for an unwatched path")
	}
	if err := m.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := m.Watch(path); err != ErrAlreadyWatching {
		t.Errorf("Watch again = %v, want ErrAlreadyWatching", err)
	}
	if !m.Emit(path, OpWrite) {
		t.Fatal("Emit did not deliver")
	}
	ev := <-m.Events()
	if ev.Op != OpWrite || !filepath.IsAbs(ev.Path) {
		t.Errorf("event = %+v", ev)
	}

	if err := m.Unwatch(path); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	if err := m.Unwatch(path); err != ErrNotWatching {
		t.Errorf("Unwatch again = %v, want ErrNotWatching", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-m.Events(); ok {
		t.Error("Events channel still open after Close")
	}
	if err := m.Watch(path); err != ErrWatcherClosed {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestManualWatcherOps(t *testing.T) {
	m := NewManualWatcher(WithOps(OpRemove | OpRename))
	defer m.Close()
	path := filepath.Join(t.TempDir(), "a.cast")
	if err := m.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if m.Emit(path, OpWrite) {
		t.Error("write delivered through a remove/rename filter")
	}
	if !m.Emit(path, OpRename) {
		t.Fatal("rename not delivered")
	}
	if ev := <-m.Events(); ev.Op != OpRename {
		t.Errorf("op = %v, want rename", ev.Op)
	}

	// Default filter drops chmod.
	d := NewManualWatcher()
	defer d.Close()
	if err := d.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if d.Emit(path, OpChmod) {
		t.Error("chmod delivered with the default filter")
	}
}

func TestFSNotifyWatcherWatchUnwatch(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.cast")
	b := filepath.Join(dir, "b.cast")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a): %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b): %v", err)
	}
	if err := w.Watch(a); err != ErrAlreadyWatching {
		t.Errorf("Watch(a) again = %v, want ErrAlreadyWatching", err)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("dir refcount = %d, want 2", w.dirs[dir])
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a): %v", err)
	}
	if w.IsWatching(a) || !w.IsWatching(b) {
		t.Error("IsWatching wrong after Unwatch(a)")
	}
	if err := w.Unwatch(a); err != ErrNotWatching {
		t.Errorf("Unwatch(a) again = %v, want ErrNotWatching", err)
	}
}

func TestFSNotifyWatcherWatchNonexistent(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing.cast")); err != ErrPathNotExist {
		t.Errorf("Watch missing = %v, want ErrPathNotExist", err)
	}
}

func TestFSNotifyWatcherEvents(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.cast")
	other := filepath.Join(dir, "other.cast")
	if err := os.WriteFile(watched, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(watched); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(other, []byte("y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(watched, []byte("changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path != watched {
				t.Fatalf("event for unwatched path %q", ev.Path)
			}
			if ev.Op.Any(OpContent) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for write event")
		}
	}
}

func TestFSNotifyWatcherClose(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrWatcherClosed {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}
