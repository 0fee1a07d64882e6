// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	userstore "github.com/dalemusser/studyshare/internal/app/store/users"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookie = "studyshare_oauth_state"
	stateTTL    = 10 * time.Minute

	// DefaultUserInfoURL is Google's v2 userinfo endpoint.
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://studyshare.example.com/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at
	// an httptest server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string

	state *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. stateKey signs the state
// cookie and should be at least 32 bytes.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, stateKey string,
	logger *zap.Logger,
) *Handler {
	sc := securecookie.New([]byte(stateKey), nil)
	sc.MaxAge(int(stateTTL.Seconds()))
	return &Handler{
		Users:        users,
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		AuditLog:     audit,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  DefaultUserInfoURL,
		state:        sc,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured reports whether client credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// oauthState is what the signed state cookie carries.
type oauthState struct {
	State  string `json:"s"`
	Return string `json:"r,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Redirects to Google's consent screen.                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		uierrors.Write(w, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not start Google sign-in.")
		return
	}

	encoded, err := h.state.Encode(stateCookie, oauthState{
		State:  state,
		Return: safeReturn(r.URL.Query().Get("return")),
	})
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not start Google sign-in.")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	h.Log.Debug("initiating Google OAuth flow", zap.String("redirect_url", url))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches user info, upserts the user, signs in.           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		uierrors.Write(w, http.StatusUnauthorized, "Google sign-in was denied")
		return
	}

	saved, ok := h.readState(r)
	clearStateCookie(w)
	if !ok || saved.State != r.URL.Query().Get("state") {
		h.Log.Warn("invalid or expired OAuth state")
		uierrors.BadRequest(w, "invalid or expired sign-in state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		uierrors.BadRequest(w, "missing authorization code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.ErrLog.HTTPBadGateway(w, r, err, "Could not complete Google sign-in.")
		return
	}

	googleUser, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.ErrLog.HTTPBadGateway(w, r, err, "Could not read Google profile.")
		return
	}
	if googleUser.Email == "" || !googleUser.EmailVerified {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, googleUser.Email)
		uierrors.Forbidden(w, "Google account has no verified email")
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	u, err := h.Users.UpsertGoogle(dbCtx, googleUser.Name, googleUser.Email)
	if err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not sign in.")
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.HTTPServerError(w, r, err, "Could not start session.")
		return
	}
	h.AuditLog.LoginSuccess(dbCtx, r, u.ID, models.AuthMethodGoogle)

	dest := saved.Return
	if dest == "" {
		dest = "/api/me"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) readState(r *http.Request) (oauthState, bool) {
	var s oauthState
	c, err := r.Cookie(stateCookie)
	if err != nil {
		return s, false
	}
	if err := h.state.Decode(stateCookie, c.Value, &s); err != nil {
		if e, ok := err.(securecookie.Error); ok && e.IsDecode() {
			h.Log.Info("oauth state cookie rejected", zap.Error(err))
		} else {
			h.Log.Warn("oauth state cookie error", zap.Error(err))
		}
		return s, false
	}
	return s, s.State != ""
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

// safeReturn keeps only same-site absolute paths.
func safeReturn(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return ""
	}
	return p
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
