package zc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.rlc")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenReadAt(t *testing.T) {
	m, err := Open(writeFile(t, []byte("hello, archive")))
	require.NoError(t, err)
	assert.Equal(t, 14, m.Len())
	assert.Equal(t, []byte("hello, archive"), m.Bytes())

	b, err := m.ReadAt(7, 7)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(b))

	_, err = m.ReadAt(10, 5)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = m.ReadAt(-1, 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	_, err = m.ReadAt(0, 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenEmpty(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	b, err := m.ReadAt(0, 0)
	require.NoError(t, err)
	assert.Empty(t, b)
	require.NoError(t, m.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
