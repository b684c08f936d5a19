// Package blob stores uploaded images behind a narrow store/retrieve capability.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
)

type Store interface {
	// Store persists data under folder and returns the URI it can be retrieved by.
	Store(ctx context.Context, folder, filename string, data []byte) (string, error)
	Retrieve(ctx context.Context, uri string) ([]byte, error)
}

// FSStore keeps blobs on the local filesystem below Root. URIs are BaseURL
// followed by the slash separated key, e.g. /media/products/main/<uuid>.png.
type FSStore struct {
	Root    string
	BaseURL string
}

func NewFSStore(root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FSStore{Root: root, BaseURL: baseURL}, nil
}

func (s *FSStore) Store(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", apperr.Invalid("image", "file is empty")
	}

	key := path.Join(cleanFolder(folder), uuid.NewString()+extension(filename))
	full := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit blob: %w", err)
	}
	return s.BaseURL + key, nil
}

func (s *FSStore) Retrieve(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := s.keyFor(uri)
	if !ok {
		return nil, apperr.NotFound("blob %s not found", uri)
	}

	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("blob %s not found", uri)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// keyFor maps a URI back to a key below Root, refusing anything that escapes it.
func (s *FSStore) keyFor(uri string) (string, bool) {
	key, ok := strings.CutPrefix(uri, s.BaseURL)
	if !ok || key == "" {
		return "", false
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != key {
		return "", false
	}
	return cleaned, true
}

func cleanFolder(folder string) string {
	cleaned := path.Clean("/" + folder)[1:]
	if cleaned == "" {
		return "misc"
	}
	return cleaned
}

func extension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
