package records_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/records"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"go.uber.org/zap"
)

func newLinkRouter(t *testing.T, maxTTL time.Duration) (http.Handler, *objstore.Local) {
	t.Helper()
	storage, err := objstore.NewLocal(objstore.LocalConfig{Root: t.TempDir(), BaseURL: "http://test/files", SigningKey: []byte(testKey)})
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	logger := zap.NewNop()
	h := records.NewHandler(nil, storage, auditlog.New(nil, logger, auditlog.Config{}), uierrors.NewErrorLogger(logger), logger)
	if maxTTL > 0 {
		h.MaxLinkTTL = maxTTL
	}
	return records.LinkRoutes(h), storage
}

func getLink(t *testing.T, router http.Handler, query string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/?"+query, nil))
	var body struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body.URL
}

func TestServeLink_Public(t *testing.T) {
	router, _ := newLinkRouter(t, 0)
	code, u := getLink(t, router, "path="+url.QueryEscape("documents/2024/05/ab-notes.pdf"))
	if code != http.StatusOK || u != "http://test/files/documents/2024/05/ab-notes.pdf" {
		t.Errorf("got %d %q", code, u)
	}
}

func TestServeLink_Signed(t *testing.T) {
	router, storage := newLinkRouter(t, time.Minute)

	code, u := getLink(t, router, "path=notices/a.jpg&ttl=72h")
	if code != http.StatusOK || !strings.HasPrefix(u, "http://test/files/signed/") {
		t.Fatalf("got %d %q", code, u)
	}
	token := strings.TrimPrefix(u, "http://test/files/signed/")
	if p, err := storage.VerifyToken(token); err != nil || p != "notices/a.jpg" {
		t.Errorf("VerifyToken: %q %v", p, err)
	}
}

func TestServeLink_BadInput(t *testing.T) {
	router, _ := newLinkRouter(t, 0)
	for _, q := range []string{"", "path=", "path=a.pdf&ttl=soon", "path=a.pdf&ttl=-1h"} {
		if code, _ := getLink(t, router, q); code != http.StatusBadRequest {
			t.Errorf("%q: status %d", q, code)
		}
	}
}
