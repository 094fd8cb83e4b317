package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := storage.Save(ctx, strings.NewReader("%PDF-1.4 test"), 13, "cert.pdf", "calibration_certificates")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "calibration_certificates/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"))
	assert.Equal(t, "/uploads/"+ref, storage.URL(ref))

	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(content))

	require.NoError(t, storage.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(ctx, ref), "повторное удаление не ошибка")
	assert.Error(t, storage.Delete(ctx, "../etc/passwd"))
	assert.Equal(t, "", storage.URL(""))
}
