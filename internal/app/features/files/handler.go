// internal/app/features/files/handler.go
package files

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MountPath is where Routes must be mounted; public lookups strip it.
const MountPath = "/files"

// Source is the part of objstore.Local the file routes need.
type Source interface {
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
	VerifyToken(token string) (string, error)
	Root() string
}

var _ Source = (*objstore.Local)(nil)

// Handler serves objects kept by the local storage backend. Public paths go
// through the waffle file server; signed links are checked here and then
// streamed from the store. MinIO deployments hand out bucket URLs instead
// and never mount these routes.
type Handler struct {
	Files  Source
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger

	public http.Handler
}

func NewHandler(files Source, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Files:  files,
		ErrLog: errLog,
		Log:    logger,
		public: fileserver.Handler(MountPath, files.Root()),
	}
}

// ServePublic handles GET /files/*. Directory paths are not listed.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")
	if strings.TrimSpace(p) == "" || strings.HasSuffix(p, "/") {
		uierrors.NotFound(w, r)
		return
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	h.public.ServeHTTP(w, r)
}

// ServeSigned handles GET /files/signed/{token}.
func (h *Handler) ServeSigned(w http.ResponseWriter, r *http.Request) {
	objectPath, err := h.Files.VerifyToken(chi.URLParam(r, "token"))
	if err != nil {
		h.Log.Info("signed link rejected", zap.Error(err))
		uierrors.Forbidden(w, "This link is invalid or has expired.")
		return
	}
	h.serve(w, r, objectPath)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, objectPath string) {
	if strings.TrimSpace(objectPath) == "" {
		uierrors.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "download object")
	defer cancel()

	rc, err := h.Files.Download(ctx, objectPath)
	switch {
	case errors.Is(err, objstore.ErrNotFound), errors.Is(err, objstore.ErrInvalidPath):
		uierrors.NotFound(w, r)
		return
	case err != nil:
		h.ErrLog.HTTPServerError(w, r, err, "Could not read file.")
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(objectPath))
	if ct == "" {
		ct = models.DefaultMimeType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		h.ErrLog.Log(r, "file stream failed", err, zap.String("path", objectPath))
	}
}
