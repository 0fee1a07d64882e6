package authctx

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/studyshare/internal/app/system/catalog"
)

var _ catalog.Identity = (*Context)(nil)

type restorer struct {
	user User
	err  error
}

func (r restorer) Me(context.Context) (User, error) { return r.user, r.err }

func TestInitialize(t *testing.T) {
	priya := User{ID: "65a000000000000000000001", FullName: "Priya", Email: "priya@example.com"}

	tests := []struct {
		name    string
		r       Restorer
		wantID  string
		wantErr bool
	}{
		{"restored", restorer{user: priya}, priya.ID, false},
		{"no session", restorer{err: ErrSignedOut}, "", false},
		{"wrapped no session", restorer{err: errors.Join(errors.New("401"), ErrSignedOut)}, "", false},
		{"server down", restorer{err: errors.New("connection refused")}, "", true},
		{"no restorer", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			err := c.Initialize(context.Background(), tt.r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: %v", err)
			}
			if c.UserID() != tt.wantID {
				t.Errorf("UserID: got %q, want %q", c.UserID(), tt.wantID)
			}
		})
	}
}

func TestSignInOut(t *testing.T) {
	c := New()
	if _, ok := c.User(); ok {
		t.Fatal("new context should be signed out")
	}
	c.SignIn(User{ID: "abc", Email: "a@b.c"})
	if u, ok := c.User(); !ok || u.Email != "a@b.c" {
		t.Errorf("User: %+v %v", u, ok)
	}
	c.SignOut()
	if c.UserID() != "" {
		t.Errorf("UserID after sign out: %q", c.UserID())
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
