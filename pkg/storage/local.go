package stores

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs on the local filesystem. Used in development and
// in tests; production points at minio.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) Store {
	return &LocalStore{Root: root}
}

func (l *LocalStore) path(key string) string {
	// Keys are service-generated, but flatten traversal anyway.
	clean := strings.ReplaceAll(key, "..", "")
	return filepath.Join(l.Root, filepath.FromSlash(clean))
}

func (l *LocalStore) Write(key string, r io.Reader, _ int64, _ string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (l *LocalStore) Read(key string) (io.ReadCloser, int64, error) {
	p := l.path(key)
	st, err := os.Stat(p)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	return f, st.Size(), nil
}

func (l *LocalStore) Delete(key string) error {
	return os.Remove(l.path(key))
}

func (l *LocalStore) Exists(key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalStore) PublicURL(key string) string {
	return "/recordings/" + key
}
