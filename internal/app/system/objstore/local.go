package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/gorilla/securecookie"
)

const signedTokenName = "objstore-link"

// LocalConfig configures a Local store.
type LocalConfig struct {
	Root       string // directory holding the objects
	BaseURL    string // public prefix, e.g. http://localhost:8080/files
	SigningKey []byte // HMAC key for signed links
}

// Local stores objects below a directory through the waffle storage
// backend. It adds the signed links the filesystem backend cannot presign;
// both kinds of link point at the /files routes served by the files feature.
type Local struct {
	files *storage.Local
	root  string
	codec *securecookie.SecureCookie
	now   func() time.Time
}

type linkClaims struct {
	Path    string `json:"p"`
	Expires int64  `json:"e"`
}

// NewLocal creates the root directory if needed.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.Root == "" {
		return nil, errors.New("objstore: local root is required")
	}
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("objstore: signing key must be at least 32 bytes")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	files, err := storage.NewLocal(storage.LocalConfig{
		BasePath: root,
		BaseURL:  strings.TrimRight(cfg.BaseURL, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	codec := securecookie.New(cfg.SigningKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	// Expiry is carried in the claims so each link can have its own ttl.
	codec.MaxAge(0)
	return &Local{
		files: files,
		root:  root,
		codec: codec,
		now:   time.Now,
	}, nil
}

// Root is the absolute directory objects are kept under.
func (l *Local) Root() string { return l.root }

func (l *Local) PublicURL(objectPath string) string {
	p, err := cleanPath(objectPath)
	if err != nil {
		return ""
	}
	return l.files.URL(escapePath(p))
}

func (l *Local) SignedURL(_ context.Context, objectPath string, ttl time.Duration) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	token, err := l.codec.Encode(signedTokenName, linkClaims{
		Path:    p,
		Expires: l.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("sign link: %w", err)
	}
	base := l.files.URL("signed")
	if base == "" {
		return "", errors.New("objstore: no base url for signed links")
	}
	return base + "/" + token, nil
}

// VerifyToken returns the object path a signed link grants access to.
func (l *Local) VerifyToken(token string) (string, error) {
	var c linkClaims
	if err := l.codec.Decode(signedTokenName, token, &c); err != nil {
		return "", ErrInvalidToken
	}
	if l.now().Unix() > c.Expires {
		return "", ErrInvalidToken
	}
	return c.Path, nil
}

func (l *Local) Upload(ctx context.Context, objectPath string, r io.Reader, _ int64, contentType string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := l.files.Put(ctx, p, r, &storage.PutOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("write object: %w", mapLocalErr(err))
	}
	return nil
}

func (l *Local) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}
	rc, err := l.files.Get(ctx, p)
	if err != nil {
		return nil, mapLocalErr(err)
	}
	return rc, nil
}

func (l *Local) Delete(ctx context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	return mapLocalErr(l.files.Delete(ctx, p))
}

// mapLocalErr translates storage sentinels into this package's.
func mapLocalErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrInvalidPath):
		return ErrInvalidPath
	}
	return err
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
