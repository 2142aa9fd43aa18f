package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes caps gallery images. Camera shots are far smaller.
const DefaultMaxBytes = 20 << 20

// Picker asks the user to choose an image and returns its path.
// Implementations return ErrCancelled when the user backs out.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// PathPicker always picks the same file. An empty path counts as a cancel.
type PathPicker string

// Pick returns the path.
func (p PathPicker) Pick(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(p)) == "" {
		return "", ErrCancelled
	}
	return string(p), ctx.Err()
}

// Gallery is the library-picker capture variant. The chosen file is read
// byte-for-byte; no quality parameter is applied.
type Gallery struct {
	picker   Picker
	root     string
	maxBytes int64
}

// GalleryOption configures a Gallery.
type GalleryOption func(*Gallery)

// WithRoot restricts picks to files under dir. Relative picks resolve
// against it.
func WithRoot(dir string) GalleryOption {
	return func(g *Gallery) { g.root = dir }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) GalleryOption {
	return func(g *Gallery) { g.maxBytes = n }
}

// NewGallery creates a gallery source around picker.
func NewGallery(picker Picker, opts ...GalleryOption) *Gallery {
	g := &Gallery{picker: picker, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Capture asks the picker for a file and reads it.
func (g *Gallery) Capture(ctx context.Context) (*Image, error) {
	path, err := g.picker.Pick(ctx)
	if err != nil {
		return nil, WrapError(KindGallery, err)
	}
	path, err = g.resolve(path)
	if err != nil {
		return nil, WrapError(KindGallery, err)
	}

	data, err := readLimited(path, g.maxBytes)
	if err != nil {
		return nil, WrapError(KindGallery, err)
	}
	if err := checkImage(data, g.maxBytes); err != nil {
		return nil, WrapError(KindGallery, fmt.Errorf("%s: %w", filepath.Base(path), err))
	}
	return NewImage(data, OriginalQuality, KindGallery), nil
}

// resolve anchors path under the gallery root, refusing escapes.
func (g *Gallery) resolve(path string) (string, error) {
	if g.root == "" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	rel, err := filepath.Rel(g.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the gallery", path)
	}
	return path, nil
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

func checkImage(data []byte, limit int64) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if limit > 0 && int64(len(data)) > limit {
		return ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return ErrNotImage
	}
	return nil
}
