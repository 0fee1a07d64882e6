// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	userstore "github.com/dalemusser/studyshare/internal/app/store/users"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users         *userstore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	GoogleEnabled bool // True if Google OAuth is configured
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:         users,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		GoogleEnabled: googleEnabled,
	}
}

type credentials struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the JSON view of the signed-in user.
type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// optionsResponse tells clients which sign-in methods are available.
type optionsResponse struct {
	Password bool `json:"password"`
	Google   bool `json:"google"`
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, err
	}
	c.Email = normalize.Email(c.Email)
	c.FullName = normalize.Name(c.FullName)
	return c, nil
}

// ServeOptions handles GET /api/auth.
func (h *Handler) ServeOptions(w http.ResponseWriter, r *http.Request) {
	uierrors.JSON(w, http.StatusOK, optionsResponse{Password: true, Google: h.GoogleEnabled})
}

// HandleSignup handles POST /api/auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if c.Email == "" || c.Password == "" {
		uierrors.BadRequest(w, "Please fill in all fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, c.FullName, c.Email, c.Password)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		uierrors.Write(w, http.StatusConflict, err.Error())
		return
	case userstore.IsValidationError(err):
		uierrors.BadRequest(w, err.Error())
		return
	case err != nil:
		h.ErrLog.HTTPServerError(w, r, err, "Could not create account.")
		return
	}

	h.AuditLog.Signup(ctx, r, u.ID, models.AuthMethodPassword)
	h.signIn(w, r, &u, http.StatusCreated)
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if c.Email == "" || c.Password == "" {
		uierrors.BadRequest(w, "Please fill in all fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, c.Email, c.Password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		if u == nil {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, c.Email)
		} else {
			h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID)
		}
		uierrors.Write(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not sign in.")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, models.AuthMethodPassword)
	h.signIn(w, r, u, http.StatusOK)
}

// ServeMe handles GET /api/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Write(w, http.StatusUnauthorized, "sign in required")
		return
	}
	uierrors.JSON(w, http.StatusOK, userResponse{ID: su.ID, FullName: su.Name, Email: su.Email})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *models.User, status int) {
	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not start session.")
		return
	}
	h.Log.Info("user signed in", zap.String("user_id", su.ID))
	uierrors.JSON(w, status, userResponse{ID: su.ID, FullName: su.Name, Email: su.Email})
}

// SessionUserID parses the current user's hex ID. The zero ID is returned
// when nobody is signed in or the session holds a malformed ID.
func SessionUserID(r *http.Request) primitive.ObjectID {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
