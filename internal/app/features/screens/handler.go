// internal/app/features/screens/handler.go
package screens

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	recordsfeature "github.com/dalemusser/studyshare/internal/app/features/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Backend is what the catalog controller reads from and deletes through.
type Backend interface {
	catalog.Fetcher
	catalog.Deleter
}

// Handler builds one catalog controller per request, so a thin client gets
// the same filtered view and menu actions the terminal client has.
type Handler struct {
	Backend  Backend
	Storage  objstore.Store
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	confirm *securecookie.SecureCookie
}

// NewHandler constructs the screens handler. confirmKey signs delete
// confirmation tokens.
func NewHandler(backend Backend, storage objstore.Store, audit *auditlog.Logger, confirmKey string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Backend:  backend,
		Storage:  storage,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
		confirm:  newConfirmCodec(confirmKey),
	}
}

type screenResponse struct {
	Screen     catalog.Screen  `json:"screen"`
	Search     string          `json:"search"`
	ActiveTags []string        `json:"active_tags"`
	Total      int             `json:"total"`
	Records    []models.Record `json:"records"`
}

type actionRequest struct {
	Token string `json:"token"`
}

type actionResponse struct {
	Action  catalog.Action  `json:"action"`
	URL     string          `json:"url,omitempty"`
	Message string          `json:"message,omitempty"`
	Records []models.Record `json:"records,omitempty"`
}

// requestDeps bundles the per-request collaborators so the handler can
// inspect what happened after the controller returns.
type requestDeps struct {
	msgs    *messages
	link    *linkCapture
	files   *responseFiles
	confirm *tokenConfirmer
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request, screen catalog.Screen) (*catalog.Controller, *requestDeps) {
	var identity sessionIdentity
	if su, ok := auth.CurrentUser(r); ok {
		identity = sessionIdentity(su.ID)
	}
	rd := &requestDeps{
		msgs:    &messages{},
		link:    &linkCapture{},
		files:   &responseFiles{w: w},
		confirm: &tokenConfirmer{codec: h.confirm},
	}
	deps := catalog.Deps{
		Fetcher:  h.Backend,
		Deleter:  h.Backend,
		Opener:   rd.link,
		Sharer:   rd.link,
		Files:    rd.files,
		Confirm:  rd.confirm,
		Messages: rd.msgs,
		Identity: identity,
		Log:      h.Log,
	}
	if h.Storage != nil {
		deps.Storage = h.Storage
	}
	return catalog.NewController(screen, deps), rd
}

// ServeIndex handles GET /api/screens.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	uierrors.JSON(w, http.StatusOK, map[string]any{"screens": catalog.Screens})
}

// ServeScreen handles GET /api/screens/{screen}?q=&tag=...
func (h *Handler) ServeScreen(w http.ResponseWriter, r *http.Request) {
	screen, ok := catalog.LookupScreen(chi.URLParam(r, "screen"))
	if !ok {
		uierrors.Write(w, http.StatusNotFound, "unknown screen")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ctl, rd := h.controller(w, r, screen)
	if err := ctl.LoadInitial(ctx); err != nil {
		uierrors.Write(w, http.StatusInternalServerError, rd.msgs.last("Could not load records."))
		return
	}
	ctl.OnSearchChanged(r.URL.Query().Get("q"))
	for _, tag := range normalize.Tags(r.URL.Query()["tag"]) {
		ctl.OnTagToggled(tag)
	}

	uierrors.JSON(w, http.StatusOK, screenResponse{
		Screen:     screen,
		Search:     ctl.Store().SearchText(),
		ActiveTags: ctl.Store().ActiveTags(),
		Total:      ctl.Store().Len(),
		Records:    ctl.Visible(),
	})
}

// HandleAction handles POST /api/screens/{screen}/records/{id}/{action}.
//
// Delete is two-step: the first call answers 409 with a prompt and a token;
// repeating the call with {"token": "..."} performs the delete.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	screen, ok := catalog.LookupScreen(chi.URLParam(r, "screen"))
	if !ok {
		uierrors.Write(w, http.StatusNotFound, "unknown screen")
		return
	}
	action, ok := catalog.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		uierrors.BadRequest(w, "unknown action")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad id")
		return
	}
	var body actionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ctl, rd := h.controller(w, r, screen)
	if err := ctl.LoadInitial(ctx); err != nil {
		uierrors.Write(w, http.StatusInternalServerError, rd.msgs.last("Could not load records."))
		return
	}
	rec, ok := ctl.Store().Find(id)
	if !ok {
		uierrors.Write(w, http.StatusNotFound, "record not found")
		return
	}
	rd.files.rec = rec
	rd.confirm.token = body.Token
	rd.confirm.claims = confirmClaims{RecordID: rec.ID.Hex()}
	if su, ok := auth.CurrentUser(r); ok {
		rd.confirm.claims.UserID = su.ID
	}

	ctl.Menus().Open(rec.ID)
	err = ctl.PerformAction(ctx, rec, action)
	h.respond(w, r, ctl, rd, rec, action, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, ctl *catalog.Controller, rd *requestDeps, rec models.Record, action catalog.Action, err error) {
	userID := login.SessionUserID(r)

	switch {
	case err == nil:
		if rd.files.written {
			return
		}
		resp := actionResponse{Action: action, URL: rd.link.url}
		if action == catalog.ActionDelete {
			recordsfeature.AfterDelete(r.Context(), h.Storage, h.Log, rec)
			h.AuditLog.RecordDeleted(r.Context(), r, userID, rec.ID, string(rec.Collection))
			resp.Message = "Deleted."
			resp.Records = ctl.Visible()
		}
		uierrors.JSON(w, http.StatusOK, resp)

	case errors.Is(err, catalog.ErrCancelled):
		uierrors.JSON(w, http.StatusConflict, uierrors.Body{Error: rd.confirm.prompt, Token: rd.confirm.issued})

	case errors.Is(err, catalog.ErrNotOwner):
		h.AuditLog.RecordDeleteDenied(r.Context(), r, userID, rec.ID, string(rec.Collection))
		uierrors.Forbidden(w, rd.msgs.last("You can only delete your own items."))

	case errors.Is(err, catalog.ErrNoFile):
		uierrors.Write(w, http.StatusNotFound, rd.msgs.last("This item has no file attached."))

	case errors.Is(err, catalog.ErrUnknownAction):
		uierrors.BadRequest(w, rd.msgs.last("action not available on this screen"))

	default:
		if rd.files.written {
			// Headers are gone; the client sees a truncated body.
			h.ErrLog.Log(r, "download stream failed", err)
			return
		}
		status := http.StatusBadGateway
		if action == catalog.ActionDelete {
			status = http.StatusInternalServerError
		}
		uierrors.Write(w, status, rd.msgs.last("Something went wrong."))
	}
}
