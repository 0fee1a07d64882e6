// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/login"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles POST /api/auth/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	userID := login.SessionUserID(r)

	// SignOut still writes a deletion cookie when the session fails to decode.
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if !userID.IsZero() {
		h.AuditLog.Logout(r.Context(), r, userID)
	}

	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
