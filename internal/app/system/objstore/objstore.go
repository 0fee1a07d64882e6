// Package objstore stores uploaded files. Two backends exist: Local keeps
// objects on disk and issues its own signed links, MinIO talks to any
// S3-compatible service.
package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("objstore: object not found")
	ErrInvalidToken = errors.New("objstore: invalid or expired link")
	ErrInvalidPath  = errors.New("objstore: invalid object path")
)

// Store is the object storage contract used by uploads and the catalog.
type Store interface {
	// PublicURL is deterministic and never expires.
	PublicURL(objectPath string) string
	// SignedURL returns a link that stops working after ttl.
	SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error)
	// Upload overwrites any existing object at objectPath.
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectPath string) error
}

// NewObjectPath builds a unique locator: prefix/YYYY/MM/uuid8-filename.
func NewObjectPath(prefix, filename string, now time.Time) string {
	now = now.UTC()
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	return path.Join(prefix, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), name)
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore. Runs of dots are broken up.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	// Storage backends reject ".." anywhere in a path.
	for bytes.Contains(result, []byte("..")) {
		result = bytes.ReplaceAll(result, []byte(".."), []byte("_."))
	}
	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

// cleanPath normalizes an object path and rejects anything that would escape
// the store root.
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "", ErrInvalidPath
	}
	return p, nil
}
