package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/port"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFsStore(fs)
	ctx := context.Background()

	out, err := store.Upload(ctx, port.UploadInput{
		Key:  "documents/abc/rates.csv",
		Body: strings.NewReader("0902,Tea leaves,2.5\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file:///documents/documents/abc/rates.csv", out.Location)

	data, err := afero.ReadFile(fs, "/documents/documents/abc/rates.csv")
	require.NoError(t, err)
	assert.Equal(t, "0902,Tea leaves,2.5\n", string(data))

	require.NoError(t, store.Delete(ctx, "", "documents/abc/rates.csv"))
	exists, err := afero.Exists(fs, "/documents/documents/abc/rates.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing object is not an error.
	assert.NoError(t, store.Delete(ctx, "", "documents/abc/rates.csv"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewFsStore(afero.NewMemMapFs())

	_, err := store.Upload(context.Background(), port.UploadInput{
		Key:  "../etc/passwd",
		Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewLocalStore_CreatesRoot(t *testing.T) {
	dir := t.TempDir() + "/archive"
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), port.UploadInput{
		Bucket: "b", Key: "k.txt", Body: strings.NewReader("hi"),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "b", "k.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}
