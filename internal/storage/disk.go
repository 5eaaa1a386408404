// Package storage keeps uploaded cake images in a directory that the HTTP
// server exposes read-only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Bucket is the directory, and URL segment, holding cake images.
const Bucket = "cake-images"

var ErrInvalidName = errors.New("storage: invalid object name")

// Disk is a single public bucket on the local filesystem.
type Disk struct {
	dir    string
	prefix string
}

// NewDisk stores objects under root/Bucket and serves them as
// urlPrefix/Bucket/<name>.
func NewDisk(root, urlPrefix string) (*Disk, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	dir := filepath.Join(filepath.Clean(root), Bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare bucket dir: %w", err)
	}
	return &Disk{
		dir:    dir,
		prefix: strings.TrimRight(urlPrefix, "/") + "/" + Bucket,
	}, nil
}

// Upload writes r to the object name, replacing any existing object.
func (d *Disk) Upload(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write object %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(d.dir, name)); err != nil {
		return fmt.Errorf("store object %s: %w", name, err)
	}
	return nil
}

// PublicURL is where the object is served from.
func (d *Disk) PublicURL(name string) string {
	return d.prefix + "/" + url.PathEscape(name)
}

// imageTypes are the raster formats accepted for upload. Scriptable formats
// such as SVG are not listed since uploads are served from the site origin.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffLen is how many leading bytes ImageExt needs.
const SniffLen = 512

// ImageExt sniffs the first bytes of an upload and returns the extension
// for a supported raster image. The client-declared type is ignored.
func ImageExt(head []byte) (string, bool) {
	ext, ok := imageTypes[http.DetectContentType(head)]
	return ext, ok
}

// ObjectName picks a fresh random name with the given extension.
func ObjectName(ext string) string {
	return uuid.NewString() + ext
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
