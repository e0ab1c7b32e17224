//go:build !unix

package castfile

import (
	"io"
	"os"
)

// mapFile reads f into memory on platforms without mmap support.
func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
