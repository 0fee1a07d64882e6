// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	auditstore "github.com/dalemusser/studyshare/internal/app/store/audit"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler lists the signed-in user's own audit trail.
type Handler struct {
	Events *auditstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(events *auditstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Events: events, ErrLog: errLog, Log: logger}
}

type activityResponse struct {
	Events []auditstore.Event `json:"events"`
}

// ServeActivity handles GET /api/me/activity?category=auth|admin&limit=N.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	userID := login.SessionUserID(r)
	if userID.IsZero() {
		uierrors.Write(w, http.StatusUnauthorized, "sign in required")
		return
	}

	category := r.URL.Query().Get("category")
	switch category {
	case "", auditstore.CategoryAuth, auditstore.CategoryAdmin:
	default:
		uierrors.BadRequest(w, "category must be auth or admin")
		return
	}

	limit := int64(defaultLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			uierrors.BadRequest(w, "limit must be a positive number")
			return
		}
		limit = min(n, maxLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		events []auditstore.Event
		err    error
	)
	if category == "" {
		events, err = h.Events.GetByUser(ctx, userID, limit)
	} else {
		events, err = h.Events.Query(ctx, auditstore.QueryFilter{UserID: &userID, Category: category, Limit: limit})
	}
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not load activity.")
		return
	}
	if events == nil {
		events = []auditstore.Event{}
	}
	uierrors.JSON(w, http.StatusOK, activityResponse{Events: events})
}
