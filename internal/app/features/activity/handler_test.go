package activity_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/app/features/activity"
	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	auditstore "github.com/dalemusser/studyshare/internal/app/store/audit"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*activity.Handler, testutil.TestUser) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	events := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.Student()
	me, _ := primitive.ObjectIDFromHex(user.ID)
	other := primitive.NewObjectID()
	base := time.Now().Add(-time.Hour)
	seed := []struct {
		uid       primitive.ObjectID
		category  string
		eventType string
	}{
		{me, auditstore.CategoryAuth, auditstore.EventLoginSuccess},
		{me, auditstore.CategoryAdmin, auditstore.EventRecordCreated},
		{me, auditstore.CategoryAdmin, auditstore.EventRecordDeleted},
		{other, auditstore.CategoryAuth, auditstore.EventLoginSuccess},
	}
	for i, s := range seed {
		uid := s.uid
		if err := events.Log(ctx, auditstore.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  s.category,
			EventType: s.eventType,
			UserID:    &uid,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	logger := zap.NewNop()
	return activity.NewHandler(events, uierrors.NewErrorLogger(logger), logger), user
}

func serve(h *activity.Handler, target string, user *testutil.TestUser) *httptest.ResponseRecorder {
	req := testutil.NewRequest("GET", target)
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := httptest.NewRecorder()
	h.ServeActivity(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) []auditstore.Event {
	t.Helper()
	var body struct {
		Events []auditstore.Event `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return body.Events
}

func TestServeActivity_OwnEventsNewestFirst(t *testing.T) {
	h, user := setup(t)

	rec := serve(h, "/api/me/activity", &user)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	events := decode(t, rec)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].EventType != auditstore.EventRecordDeleted {
		t.Errorf("newest first: got %q", events[0].EventType)
	}
	for _, e := range events {
		if e.UserID == nil || e.UserID.Hex() != user.ID {
			t.Errorf("event for another user leaked: %+v", e)
		}
	}
}

func TestServeActivity_CategoryAndLimit(t *testing.T) {
	h, user := setup(t)

	events := decode(t, serve(h, "/api/me/activity?category=admin", &user))
	if len(events) != 2 {
		t.Errorf("admin: got %d events, want 2", len(events))
	}
	events = decode(t, serve(h, "/api/me/activity?limit=1", &user))
	if len(events) != 1 {
		t.Errorf("limit: got %d events, want 1", len(events))
	}
}

func TestServeActivity_Errors(t *testing.T) {
	h, user := setup(t)

	tests := []struct {
		name   string
		target string
		user   *testutil.TestUser
		want   int
	}{
		{"signed out", "/api/me/activity", nil, http.StatusUnauthorized},
		{"bad category", "/api/me/activity?category=billing", &user, http.StatusBadRequest},
		{"bad limit", "/api/me/activity?limit=-3", &user, http.StatusBadRequest},
		{"non-numeric limit", "/api/me/activity?limit=ten", &user, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(h, tt.target, tt.user); rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
