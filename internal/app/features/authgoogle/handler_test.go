package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/app/features/authgoogle"
	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	userstore "github.com/dalemusser/studyshare/internal/app/store/users"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestHandler(t *testing.T, users *userstore.Store, clientID string) *authgoogle.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	audit := auditlog.New(nil, logger, auditlog.Config{Auth: auditlog.ModeOff})

	return authgoogle.NewHandler(
		users,
		sessionMgr,
		uierrors.NewErrorLogger(logger),
		audit,
		clientID,
		"test-client-secret",
		"http://localhost:8080/",
		testKey,
		logger,
	)
}

func TestIsConfigured(t *testing.T) {
	if !newTestHandler(t, nil, "id").IsConfigured() {
		t.Error("expected configured")
	}
	if newTestHandler(t, nil, "").IsConfigured() {
		t.Error("expected unconfigured without client id")
	}
}

func TestRedirectURL(t *testing.T) {
	h := newTestHandler(t, nil, "id")
	if h.RedirectURL != "http://localhost:8080/auth/google/callback" {
		t.Errorf("RedirectURL: got %q", h.RedirectURL)
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := newTestHandler(t, nil, "")
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestServeLogin_RedirectsWithState(t *testing.T) {
	h := newTestHandler(t, nil, "test-client-id")
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/api/screens/home", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if loc.Query().Get("client_id") != "test-client-id" {
		t.Errorf("client_id missing from %s", loc)
	}
	if loc.Query().Get("state") == "" {
		t.Error("state missing")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Errorf("expected one state cookie, got %d", len(rec.Result().Cookies()))
	}
}

func TestServeCallback_RejectsBadState(t *testing.T) {
	h := newTestHandler(t, nil, "test-client-id")

	tests := []struct {
		name   string
		cookie *http.Cookie
		query  string
		want   int
	}{
		{"no cookie", nil, "?state=abc&code=x", http.StatusBadRequest},
		{"tampered cookie", &http.Cookie{Name: "studyshare_oauth_state", Value: "garbage"}, "?state=abc&code=x", http.StatusBadRequest},
		{"provider error", nil, "?error=access_denied", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/auth/google/callback"+tt.query, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeCallback(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServeCallback_FullFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"g1","email":"Priya@Example.com","verified_email":true,"name":"Priya"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer google.Close()

	h := newTestHandler(t, users, "test-client-id")
	h.Endpoint = oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"}
	h.UserInfoURL = google.URL + "/userinfo"

	// Step 1: start the flow to obtain a signed state cookie.
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/api/screens/notes", nil))
	loc, _ := url.Parse(rec.Header().Get("Location"))
	state := loc.Query().Get("state")
	stateCookie := rec.Result().Cookies()[0]

	// Step 2: return from the provider.
	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	req.AddCookie(stateCookie)
	rec = httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/api/screens/notes" {
		t.Errorf("Location: got %q", got)
	}
	var session bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.Value != "" {
			session = true
		}
	}
	if !session {
		t.Error("expected a session cookie")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := users.GetByEmail(ctx, "priya@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.AuthMethod != "google" {
		t.Errorf("auth method: got %q", u.AuthMethod)
	}
}

func TestServeLogin_DefaultsToGoogleEndpoint(t *testing.T) {
	h := newTestHandler(t, nil, "test-client-id")
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=//evil.example", nil))
	if !strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/") {
		t.Errorf("unexpected Location %q", rec.Header().Get("Location"))
	}
}
