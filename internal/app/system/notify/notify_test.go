package notify

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestNotificationTexts(t *testing.T) {
	if got := NoticeNotification("Holiday", "College closed").Title; got != "🆕 Holiday" {
		t.Errorf("notice title: %q", got)
	}
	r := RequestNotification("OS notes", "")
	if r.Title != "📥 New Request: OS notes" || r.Body != "No description" {
		t.Errorf("request: %+v", r)
	}
}

func TestFeed_RecentNewestFirstAndBounded(t *testing.T) {
	f := NewFeed(3, zap.NewNop())
	for _, title := range []string{"a", "b", "c", "d"} {
		f.Publish(Notification{Title: title})
	}

	got := f.Recent(0)
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	if got[0].Title != "d" || got[2].Title != "b" {
		t.Errorf("order: %v", got)
	}
	if got[0].At.IsZero() {
		t.Error("At should be stamped")
	}
	if len(f.Recent(1)) != 1 {
		t.Error("limit not applied")
	}
}

func TestFeed_ConcurrentPublish(t *testing.T) {
	f := NewFeed(10, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Publish(Notification{Title: "x"})
		}()
	}
	wg.Wait()
	if len(f.Recent(0)) != 10 {
		t.Errorf("expected capacity to hold, got %d", len(f.Recent(0)))
	}
}
