package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// FileStore keeps blobs under a root directory. Paths cannot escape the root.
type FileStore struct {
	root    *os.Root
	signer  *Signer
	baseURL string
}

// NewFileStore opens dir as the blob root. URLs are built relative to baseURL;
// an empty baseURL yields site-relative URLs.
func NewFileStore(dir string, signer *Signer, baseURL string) (*FileStore, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob root %s: %w", dir, err)
	}
	return &FileStore{
		root:    root,
		signer:  signer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// URL resolves a stored path to a time-limited retrieval URL.
func (f *FileStore) URL(_ context.Context, blobPath string) (string, time.Time, error) {
	clean, err := cleanPath(blobPath)
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := f.root.Stat(clean); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return "", time.Time{}, fmt.Errorf("failed to stat blob: %w", err)
	}

	token, expiresAt, err := f.signer.Sign(clean)
	if err != nil {
		return "", time.Time{}, err
	}
	return f.baseURL + "/downloads/file?token=" + url.QueryEscape(token), expiresAt, nil
}

// Open verifies token and opens the blob it grants access to.
func (f *FileStore) Open(_ context.Context, token string) (*os.File, fs.FileInfo, error) {
	blobPath, err := f.signer.Verify(token)
	if err != nil {
		return nil, nil, err
	}
	clean, err := cleanPath(blobPath)
	if err != nil {
		return nil, nil, err
	}

	file, err := f.root.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, nil, fmt.Errorf("failed to open blob: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to stat blob: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	return file, info, nil
}

func (f *FileStore) Close() error {
	return f.root.Close()
}

func cleanPath(blobPath string) (string, error) {
	trimmed := strings.TrimSpace(blobPath)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("%w: invalid path %q", ErrNotFound, blobPath)
	}
	clean := path.Clean(trimmed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: invalid path %q", ErrNotFound, blobPath)
	}
	return clean, nil
}
