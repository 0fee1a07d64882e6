package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/studyshare/internal/app/store/audit"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memSink struct {
	events []audit.Event
	err    error
}

func (m *memSink) Log(_ context.Context, e audit.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	req := httptest.NewRequest("GET", "/", nil)
	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "password")
	logger.Logout(context.Background(), req, primitive.NewObjectID())
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode     string
		wantDB   int
		wantLogs int
	}{
		{auditlog.ModeAll, 1, 1},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeOff, 0, 0},
		{"", 1, 1},
	}
	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			sink := &memSink{}
			logger := auditlog.New(sink, zap.New(core), auditlog.Config{Auth: tt.mode, Admin: auditlog.ModeOff})

			req := httptest.NewRequest("POST", "/api/login", nil)
			logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "password")
			// Admin is off, so this never lands anywhere.
			logger.RecordCreated(context.Background(), req, primitive.NewObjectID(), primitive.NewObjectID(), "documents")

			if len(sink.events) != tt.wantDB {
				t.Errorf("db events: got %d, want %d", len(sink.events), tt.wantDB)
			}
			if logs.Len() != tt.wantLogs {
				t.Errorf("log entries: got %d, want %d", logs.Len(), tt.wantLogs)
			}
		})
	}
}

func TestLogger_FailureLogsWarn(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.ModeLog})

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.LoginFailedUserNotFound(context.Background(), req, "nobody@example.com")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level: got %v, want warn", entries[0].Level)
	}
	ctx := entries[0].ContextMap()
	if ctx["ip"] != "203.0.113.9" {
		t.Errorf("ip: got %v", ctx["ip"])
	}
	if ctx["detail_attempted_email"] != "nobody@example.com" {
		t.Errorf("detail: got %v", ctx["detail_attempted_email"])
	}
}

func TestLogger_SinkErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := auditlog.New(&memSink{err: errors.New("db down")}, zap.New(core), auditlog.Config{Admin: auditlog.ModeDB})

	req := httptest.NewRequest("DELETE", "/api/collections/notices/x", nil)
	logger.RecordDeleted(context.Background(), req, primitive.NewObjectID(), primitive.NewObjectID(), "notices")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Errorf("expected the sink failure to be logged, got %v", logs.All())
	}
}
