package store

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BlobStore is a filesystem-backed blob backend. Keys are slash-separated
// paths under the configured root; the public URL is the base URL joined
// with the key. Writes are whole-file and deterministic: putting the same
// key twice overwrites in place (last write wins), so a key is always an
// exact-match lookup, never a prefix search.
type BlobStore struct {
	root    string
	baseURL string
}

func NewBlobStore(root, baseURL string) (*BlobStore, error) {
	if root == "" {
		return nil, errors.New("blob store root directory not set")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &BlobStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// URL returns the public URL a stored key resolves to.
func (s *BlobStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// Exists reports whether an object is stored at exactly the given key, and
// if so its public URL.
func (s *BlobStore) Exists(key string) (string, bool, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("checking blob %s: %w", key, err)
	}
	return s.URL(key), true, nil
}

// Put stores data at the given key and returns its public URL. The sidecar
// .type file records the content type for whatever serves the directory.
func (s *BlobStore) Put(key string, data []byte, contentType string) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", key, err)
	}
	if contentType != "" {
		if err := os.WriteFile(target+".type", []byte(contentType), 0o644); err != nil {
			return "", fmt.Errorf("writing blob content type: %w", err)
		}
	}
	return s.URL(key), nil
}

func (s *BlobStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
