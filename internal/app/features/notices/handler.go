// internal/app/features/notices/handler.go
package notices

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	"github.com/dalemusser/studyshare/internal/app/features/upload"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/genai"
	"github.com/dalemusser/studyshare/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/notify"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Notices  *recordstore.Store
	Storage  objstore.Store
	AI       genai.Completer
	Feed     *notify.Feed
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	MaxBytes int64

	now func() time.Time
}

func NewHandler(
	notices *recordstore.Store,
	storage objstore.Store,
	ai genai.Completer,
	feed *notify.Feed,
	audit *auditlog.Logger,
	maxBytes int64,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if maxBytes <= 0 {
		maxBytes = upload.DefaultMaxBytes
	}
	return &Handler{
		Notices:  notices,
		Storage:  storage,
		AI:       ai,
		Feed:     feed,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
		MaxBytes: maxBytes,
		now:      time.Now,
	}
}

type noticeInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type summaryResponse struct {
	Summary  string `json:"summary"`
	Fallback bool   `json:"fallback,omitempty"`
}

func isMultipart(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return strings.HasPrefix(mt, "multipart/")
}

// HandleCreate handles POST /api/notices. It takes JSON {title, content} or
// multipart with title, content and an optional image field.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Write(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var in noticeInput
	var imageReq bool
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
		if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
			uierrors.BadRequest(w, "invalid form data")
			return
		}
		in.Title = r.FormValue("title")
		in.Content = r.FormValue("content")
		imageReq = len(r.MultipartForm.File["image"]) > 0
	} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	in.Title = normalize.Name(htmlsanitize.PlainText(in.Title))
	in.Content = strings.TrimSpace(htmlsanitize.PlainText(in.Content))

	if in.Title == "" {
		uierrors.BadRequest(w, "Title is required.")
		return
	}
	if in.Content == "" && !imageReq {
		uierrors.BadRequest(w, "Please provide either content or an image.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	now := h.now()
	rec := models.Record{
		Name:        in.Title,
		Description: in.Content,
		Tags:        []string{},
		UploadedBy:  su.Email,
		OwnerID:     login.SessionUserID(r),
		CreatedAt:   now.UTC(),
	}

	if imageReq {
		file, att, err := upload.AttachmentFromForm(r, "image", models.AttachmentImage, "", now)
		if err != nil {
			uierrors.BadRequest(w, "invalid image")
			return
		}
		defer file.Close()
		if err := att.Validate(); err != nil {
			uierrors.BadRequest(w, err.Error())
			return
		}
		if !att.IsImage() {
			uierrors.BadRequest(w, "image must be an image file")
			return
		}
		info, err := upload.SaveAttachment(ctx, h.Storage, "notices", att, file, now)
		if err != nil {
			h.ErrLog.HTTPBadGateway(w, r, err, "Failed to upload image.")
			return
		}
		rec.FilePath = info.Path
		rec.MimeType = info.ContentType
		rec.SizeBytes = info.Size
		rec.ImageURL = h.Storage.PublicURL(info.Path)
	}

	saved, err := h.Notices.Insert(ctx, rec)
	if err != nil {
		if rec.FilePath != "" {
			if derr := h.Storage.Delete(ctx, rec.FilePath); derr != nil {
				h.Log.Warn("orphaned upload not removed", zap.String("path", rec.FilePath), zap.Error(derr))
			}
		}
		if errors.Is(err, recordstore.ErrInvalid) {
			uierrors.BadRequest(w, err.Error())
			return
		}
		h.ErrLog.HTTPServerError(w, r, err, "Error adding notice.")
		return
	}

	h.AuditLog.RecordCreated(ctx, r, saved.OwnerID, saved.ID, string(saved.Collection))
	if h.Feed != nil {
		n := notify.NoticeNotification(saved.Name, saved.Description)
		n.RecordID = saved.ID.Hex()
		h.Feed.Publish(n)
	}

	uierrors.JSON(w, http.StatusCreated, saved)
}

// HandleSummarize handles POST /api/notices/summarize (multipart "image").
// It returns the model's Hinglish summary; when the model cannot be reached
// the summary is the fixed fallback text.
func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := upload.ReadImage(w, r, "image", h.MaxBytes)
	if err != nil {
		uierrors.BadRequest(w, "Please pick an image.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	summary, err := genai.SummarizeImage(ctx, h.AI, data, mimeType)
	if err != nil {
		h.ErrLog.Log(r, "summarize image failed", err)
		uierrors.JSON(w, http.StatusOK, summaryResponse{Summary: genai.ImageFallback, Fallback: true})
		return
	}
	uierrors.JSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// ServeNotifications handles GET /api/notifications.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	items := []notify.Notification{}
	if h.Feed != nil {
		items = h.Feed.Recent(notify.DefaultCapacity)
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"notifications": items})
}
