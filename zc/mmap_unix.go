//go:build unix

package zc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps path read-only. Empty files yield an empty archive.
func Open(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("zc: open: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("zc: stat: %w", err)
	}
	size := fi.Size()
	if size == 0 {
		return &Mapped{}, nil
	}
	if size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("zc: %s too large to map (%d bytes)", path, size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("zc: mmap: %w", err)
	}
	return &Mapped{
		data: data,
		unmap: func() error {
			if err := unix.Munmap(data); err != nil {
				return fmt.Errorf("zc: munmap: %w", err)
			}
			return nil
		},
	}, nil
}
