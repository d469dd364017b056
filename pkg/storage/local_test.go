package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root)
	require.NoError(t, err)

	key := "employees/photos/a.png"
	require.NoError(t, s.Put(ctx, key, bytes.NewReader([]byte("png-bytes")), 9, "image/png"))

	_, err = os.Stat(filepath.Join(root, "employees", "photos", "a.png"))
	require.NoError(t, err)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// 重复删除视为成功
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside.png", "employees/../../outside.png", "/etc/passwd"} {
		err := s.Put(ctx, key, bytes.NewReader(nil), 0, "")
		assert.Error(t, err, "key=%q", key)
	}
}

func TestLocal_PutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "employees/photos/b.jpg", bytes.NewReader([]byte("jpg")), 3, "image/jpeg"))

	entries, err := os.ReadDir(filepath.Join(root, "employees", "photos"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.jpg", entries[0].Name())
}
