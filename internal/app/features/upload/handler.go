// internal/app/features/upload/handler.go
package upload

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes = 25 << 20

type Handler struct {
	Documents *recordstore.Store
	Storage   objstore.Store
	AuditLog  *auditlog.Logger
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
	MaxBytes  int64

	now func() time.Time
}

func NewHandler(documents *recordstore.Store, storage objstore.Store, audit *auditlog.Logger, maxBytes int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{
		Documents: documents,
		Storage:   storage,
		AuditLog:  audit,
		ErrLog:    errLog,
		Log:       logger,
		MaxBytes:  maxBytes,
		now:       time.Now,
	}
}

type uploadResponse struct {
	Message string        `json:"message"`
	Record  models.Record `json:"record"`
}

// ServeTags handles GET /api/upload/tags.
func (h *Handler) ServeTags(w http.ResponseWriter, r *http.Request) {
	uierrors.JSON(w, http.StatusOK, map[string][]string{"tags": models.UploadTags})
}

// HandleUpload handles POST /api/upload (multipart/form-data).
//
// Fields: file (required), name, kind (document | image | camera),
// description, tags (repeated or comma-separated).
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Write(w, http.StatusUnauthorized, "sign in required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			uierrors.Write(w, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}
		uierrors.BadRequest(w, "Please select a file and provide a name")
		return
	}

	kind := models.AttachmentKind(r.FormValue("kind"))
	if kind == "" {
		kind = models.AttachmentDocument
	}
	now := h.now()
	file, att, err := AttachmentFromForm(r, "file", kind, normalize.Name(r.FormValue("name")), now)
	if err != nil {
		uierrors.BadRequest(w, "Please select a file and provide a name")
		return
	}
	defer file.Close()
	if err := att.Validate(); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	var tags []string
	for _, v := range r.MultipartForm.Value["tags"] {
		tags = append(tags, normalize.SplitTags(v)...)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	info, err := SaveAttachment(ctx, h.Storage, "documents", att, file, now)
	if err != nil {
		h.ErrLog.HTTPBadGateway(w, r, err, "Failed to upload file.")
		return
	}

	uploader := su.Name
	if uploader == "" {
		uploader = su.Email
	}
	rec, err := h.Documents.Insert(ctx, models.Record{
		Name:        info.FileName,
		Description: htmlsanitize.PlainText(r.FormValue("description")),
		Tags:        normalize.Tags(tags),
		UploadedBy:  uploader,
		OwnerID:     login.SessionUserID(r),
		FilePath:    info.Path,
		MimeType:    info.ContentType,
		SizeBytes:   info.Size,
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		if derr := h.Storage.Delete(ctx, info.Path); derr != nil {
			h.Log.Warn("orphaned upload not removed", zap.String("path", info.Path), zap.Error(derr))
		}
		if errors.Is(err, recordstore.ErrInvalid) {
			uierrors.BadRequest(w, err.Error())
			return
		}
		h.ErrLog.HTTPServerError(w, r, err, "Failed to save file details.")
		return
	}

	h.AuditLog.RecordCreated(ctx, r, rec.OwnerID, rec.ID, string(rec.Collection))
	h.Log.Info("document uploaded",
		zap.String("record_id", rec.ID.Hex()),
		zap.String("path", rec.FilePath),
		zap.Int64("size", rec.SizeBytes))

	uierrors.JSON(w, http.StatusCreated, uploadResponse{Message: "File uploaded successfully!", Record: rec})
}
