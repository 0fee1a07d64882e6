// Package authctx holds who is signed in for the lifetime of a client
// process. The catalog controller receives it as its Identity.
package authctx

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSignedOut is what a Restorer returns when no session exists.
var ErrSignedOut = errors.New("authctx: not signed in")

// User is the signed-in account as the client sees it.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Restorer looks up the user tied to a saved session.
type Restorer interface {
	Me(ctx context.Context) (User, error)
}

// Context is safe for concurrent use.
type Context struct {
	mu   sync.RWMutex
	user *User
}

func New() *Context { return &Context{} }

// Initialize restores a saved session, if one is still valid. A missing
// session is not an error.
func (c *Context) Initialize(ctx context.Context, r Restorer) error {
	if r == nil {
		return nil
	}
	u, err := r.Me(ctx)
	if errors.Is(err, ErrSignedOut) {
		c.SignOut()
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	c.SignIn(u)
	return nil
}

// Close releases nothing; the session lives in the cookie jar.
func (c *Context) Close() error { return nil }

func (c *Context) SignIn(u User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &u
}

func (c *Context) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}

// User returns the signed-in user.
func (c *Context) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

// UserID is empty when nobody is signed in.
func (c *Context) UserID() string {
	u, _ := c.User()
	return u.ID
}
