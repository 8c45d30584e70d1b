//go:build !unix

package zc

import (
	"fmt"
	"os"
)

// Open reads path into memory.
func Open(path string) (*Mapped, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zc: read: %w", err)
	}
	return &Mapped{data: data}, nil
}
