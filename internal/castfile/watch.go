package castfile

import (
	"os"

	"github.com/dshills/castedit/internal/watcher"
)

func (f *CastFile) watch() error {
	if err := f.watcher.Watch(f.path); err != nil {
		return err
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.done:
				return
			case ev, ok := <-f.watcher.Events():
				if !ok {
					return
				}
				if ev.Path == f.path && ev.Op.Any(watcher.OpContent) {
					f.checkSource()
				}
			case err, ok := <-f.watcher.Errors():
				if !ok {
					return
				}
				f.log.Warn("watch %s: %v", f.path, err)
			}
		}
	}()
	return nil
}

// checkSource marks the file stale unless the path still holds exactly the
// file the mapping was taken from, or the file this CastFile last saved.
func (f *CastFile) checkSource() {
	if f.stale.Load() {
		return
	}
	want := f.source.Load()
	got, err := os.Stat(f.path)
	if err == nil && want != nil && sameContent(*want, got) {
		return
	}
	f.stale.Store(true)
	f.log.Warn("source %s changed on disk", f.path)
}

func sameContent(a, b os.FileInfo) bool {
	return os.SameFile(a, b) && a.Size() == b.Size() && a.ModTime().Equal(b.ModTime())
}
