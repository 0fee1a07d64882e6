// internal/app/features/records/handler.go
package records

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the raw collection API the terminal client reads.
type Handler struct {
	Backend  *recordstore.Backend
	Storage  objstore.Store
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// MaxLinkTTL caps the lifetime a client may ask for in GET /api/links.
	MaxLinkTTL time.Duration
}

// DefaultMaxLinkTTL applies when MaxLinkTTL is unset.
const DefaultMaxLinkTTL = 24 * time.Hour

func NewHandler(backend *recordstore.Backend, storage objstore.Store, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Backend:  backend,
		Storage:  storage,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,

		MaxLinkTTL: DefaultMaxLinkTTL,
	}
}

// listResponse wraps a fetched snapshot.
type listResponse struct {
	Collection models.Collection `json:"collection"`
	Records    []models.Record   `json:"records"`
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*recordstore.Store, bool) {
	c := models.Collection(chi.URLParam(r, "collection"))
	s := h.Backend.Store(c)
	if s == nil {
		uierrors.Write(w, http.StatusNotFound, "unknown collection")
		return nil, false
	}
	return s, true
}

// ServeList handles GET /api/collections/{collection}?tag=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	opt := recordstore.FetchOptions{Tag: normalize.QueryParam(r.URL.Query().Get("tag"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			uierrors.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		opt.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := s.Fetch(ctx, opt)
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not load records.",
			zap.String("collection", string(s.Collection())))
		return
	}
	uierrors.JSON(w, http.StatusOK, listResponse{Collection: s.Collection(), Records: recs})
}

// ServeGet handles GET /api/collections/{collection}/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rec, err := s.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not load record.")
		return
	}
	uierrors.JSON(w, http.StatusOK, rec)
}

// HandleDelete handles DELETE /api/collections/{collection}/{id}. Only the
// owner may delete; the stored object is removed best-effort afterwards.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rec, err := s.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not load record.")
		return
	}

	su, _ := auth.CurrentUser(r)
	userID := login.SessionUserID(r)
	if su == nil || !rec.OwnedBy(su.ID) {
		h.Log.Info("delete refused, not owner",
			zap.String("record_id", rec.ID.Hex()),
			zap.String("collection", string(rec.Collection)))
		h.AuditLog.RecordDeleteDenied(ctx, r, userID, rec.ID, string(rec.Collection))
		uierrors.Forbidden(w, "You can only delete your own "+rec.Collection.Noun()+"s.")
		return
	}

	if _, err := s.Delete(ctx, rec.ID); err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Failed to delete "+rec.Collection.Noun()+".")
		return
	}
	AfterDelete(ctx, h.Storage, h.Log, rec)
	h.AuditLog.RecordDeleted(ctx, r, userID, rec.ID, string(rec.Collection))

	w.WriteHeader(http.StatusNoContent)
}

// AfterDelete removes the object behind a deleted record. Failures are
// logged; the record is already gone.
func AfterDelete(ctx context.Context, storage objstore.Store, log *zap.Logger, rec models.Record) {
	if storage == nil || !rec.HasFile() {
		return
	}
	if err := storage.Delete(ctx, rec.FilePath); err != nil && !errors.Is(err, objstore.ErrNotFound) {
		log.Warn("stored object not removed",
			zap.String("record_id", rec.ID.Hex()),
			zap.String("path", rec.FilePath),
			zap.Error(err))
	}
}
