package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/app/store/audit"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	userID := primitive.NewObjectID()
	base := time.Now().Add(-time.Minute)
	for i, et := range []string{audit.EventLoginSuccess, audit.EventRecordCreated, audit.EventRecordDeleted} {
		cat := audit.CategoryAdmin
		if et == audit.EventLoginSuccess {
			cat = audit.CategoryAuth
		}
		if err := store.Log(ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Category:  cat,
			EventType: et,
			UserID:    &userID,
			IP:        "10.0.0.1",
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventRecordDeleted {
		t.Errorf("newest first: got %q", events[0].EventType)
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}

	admin, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(admin) != 2 {
		t.Errorf("expected 2 admin events, got %d", len(admin))
	}
}
