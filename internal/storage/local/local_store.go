// Package local archives documents on a filesystem, laid out as
// <root>/<bucket>/<key>.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"gstrates/internal/domain"
	"gstrates/internal/port"
)

const defaultBucket = "documents"

type localStore struct {
	fs afero.Fs
}

// NewLocalStore archives under dir on the OS filesystem.
func NewLocalStore(dir string) (port.ObjectStorage, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local store: creating %s: %w", dir, err)
	}
	return NewFsStore(afero.NewBasePathFs(osFs, dir)), nil
}

// NewFsStore archives on an arbitrary afero filesystem.
func NewFsStore(fs afero.Fs) port.ObjectStorage {
	return &localStore{fs: fs}
}

func objectPath(bucket, key string) (string, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	p := path.Clean("/" + bucket + "/" + key)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrInvalidInput, key)
	}
	return p, nil
}

func (s *localStore) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	p, err := objectPath(input.Bucket, input.Key)
	if err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Body); err != nil {
		return nil, fmt.Errorf("local upload write: %w", err)
	}
	return &port.UploadOutput{Location: "file://" + p}, nil
}

func (s *localStore) Delete(_ context.Context, bucket, key string) error {
	p, err := objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
