package service

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Asset namespaces. Each kind of image lives under its own prefix.
const (
	NamespaceLogos  = "logos"
	NamespaceDishes = "dishes"
	NamespaceQR     = "qr"
)

var namespaces = map[string]bool{
	NamespaceLogos:  true,
	NamespaceDishes: true,
	NamespaceQR:     true,
}

// image types accepted for uploads, keyed by detected MIME
var uploadExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AssetStore keeps binary assets outside the database. Records reference them by the
// relative path returned from Save.
type AssetStore struct {
	fs           afero.Fs
	publicPrefix string
}

// NewAssetStore wraps an afero filesystem, e.g. afero.NewMemMapFs() in tests
func NewAssetStore(fsys afero.Fs, publicPrefix string) *AssetStore {
	return &AssetStore{fs: fsys, publicPrefix: strings.TrimRight(publicPrefix, "/")}
}

// NewDiskAssetStore stores assets below root on the local disk
func NewDiskAssetStore(root, publicPrefix string) (*AssetStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create asset root: %w", err)
	}
	return NewAssetStore(afero.NewBasePathFs(afero.NewOsFs(), root), publicPrefix), nil
}

// Save writes data to namespace/name and returns the relative path
func (s *AssetStore) Save(namespace, name string, data []byte) (string, error) {
	if !namespaces[namespace] {
		return "", fmt.Errorf("unknown asset namespace %q", namespace)
	}
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	if err := s.fs.MkdirAll(s.abs(namespace), 0o755); err != nil {
		return "", err
	}
	rel := path.Join(namespace, name)
	if err := afero.WriteFile(s.fs, s.abs(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write asset %s: %w", rel, err)
	}
	return rel, nil
}

// SaveUpload validates an uploaded image and stores it under a fresh name
func (s *AssetStore) SaveUpload(namespace, prefix string, data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", NewValidationError("file", "file is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", NewValidationError("file", fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}
	mt := mimetype.Detect(data)
	ext, ok := uploadExtensions[mt.String()]
	if !ok {
		return "", NewValidationError("file", "unsupported image type "+mt.String())
	}
	name := prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + ext
	return s.Save(namespace, name, data)
}

// Read returns the content of a stored asset
func (s *AssetStore) Read(rel string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Remove deletes an asset; missing files are ignored
func (s *AssetStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := s.fs.Remove(s.abs(rel))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// abs rooted form of a relative asset path, the form HTTPFileSystem opens
func (s *AssetStore) abs(rel string) string {
	return path.Join("/", rel)
}

// URL public location of an asset path
func (s *AssetStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.publicPrefix + "/" + rel
}

// PublicPrefix route prefix the assets are served from
func (s *AssetStore) PublicPrefix() string {
	return s.publicPrefix
}

// HTTPFileSystem exposes the store to gin's StaticFS
func (s *AssetStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}
