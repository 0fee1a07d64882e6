// internal/app/features/requests/handler.go
package requests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/notify"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.uber.org/zap"
)

// Handler creates material requests. Listing and deleting requests go
// through the catalog screens.
type Handler struct {
	Requests *recordstore.Store
	Feed     *notify.Feed
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(requests *recordstore.Store, feed *notify.Feed, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Requests: requests,
		Feed:     feed,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type requestInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// HandleCreate handles POST /api/requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Write(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var in requestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	title := normalize.Name(htmlsanitize.PlainText(in.Title))
	if title == "" {
		uierrors.BadRequest(w, "Title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	saved, err := h.Requests.Insert(ctx, models.Record{
		Name:        title,
		Description: strings.TrimSpace(htmlsanitize.PlainText(in.Description)),
		Tags:        normalize.Tags(in.Tags),
		UploadedBy:  su.Email,
		OwnerID:     login.SessionUserID(r),
	})
	if err != nil {
		if errors.Is(err, recordstore.ErrInvalid) {
			uierrors.BadRequest(w, err.Error())
			return
		}
		h.ErrLog.HTTPServerError(w, r, err, "Error submitting request.")
		return
	}

	h.AuditLog.RecordCreated(ctx, r, saved.OwnerID, saved.ID, string(saved.Collection))
	if h.Feed != nil {
		n := notify.RequestNotification(saved.Name, saved.Description)
		n.RecordID = saved.ID.Hex()
		h.Feed.Publish(n)
	}

	uierrors.JSON(w, http.StatusCreated, saved)
}
