package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/app/features/logout"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServeLogout_ClearsCookieAndAudits(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "studyshare-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := logout.NewHandler(sm, auditlog.New(nil, logger, auditlog.Config{Auth: "log"}), zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("POST", "/api/auth/logout", nil), testutil.Student())
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "studyshare-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected a deletion cookie for the session")
	}
	if logs.FilterField(zap.String("event_type", "logout")).Len() != 1 {
		t.Errorf("expected one logout audit entry, got %d", logs.Len())
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	sm, _ := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "studyshare-session", "", time.Hour, false, zap.NewNop())
	h := logout.NewHandler(sm, auditlog.New(nil, zap.NewNop(), auditlog.Config{}), zap.NewNop())

	rec := httptest.NewRecorder()
	logout.Routes(h, sm).ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
