// internal/app/features/screens/adapters.go
package screens

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/gorilla/securecookie"
)

// The controller's collaborators, bound to one HTTP request.

// sessionIdentity is the signed-in user's hex ID, empty when anonymous.
type sessionIdentity string

func (s sessionIdentity) UserID() string { return string(s) }

// messages keeps what the controller wanted to show the user.
type messages struct{ list []string }

func (m *messages) Message(text string) { m.list = append(m.list, text) }

func (m *messages) last(fallback string) string {
	if len(m.list) == 0 {
		return fallback
	}
	return m.list[len(m.list)-1]
}

// linkCapture records the URL handed to Open or Share so it can be
// returned in the response body.
type linkCapture struct{ url string }

func (l *linkCapture) Open(_ context.Context, url string) error {
	l.url = url
	return nil
}

func (l *linkCapture) Share(_ context.Context, uri string) error {
	l.url = uri
	return nil
}

// responseFiles streams a download straight into the response.
type responseFiles struct {
	w       http.ResponseWriter
	rec     models.Record
	written bool
}

func (f *responseFiles) Save(name string, r io.Reader) (string, error) {
	ct := f.rec.MimeType
	if ct == "" {
		ct = "application/octet-stream"
	}
	f.w.Header().Set("Content-Type", ct)
	f.w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	f.w.WriteHeader(http.StatusOK)
	f.written = true
	if _, err := io.Copy(f.w, r); err != nil {
		return "", err
	}
	return "attachment:" + name, nil
}

// confirmTokenName scopes confirmation tokens in securecookie.
const confirmTokenName = "confirm-delete"

// ConfirmTTL bounds how long a delete confirmation token stays valid.
const ConfirmTTL = 5 * time.Minute

type confirmClaims struct {
	RecordID string `json:"r"`
	UserID   string `json:"u"`
}

// tokenConfirmer turns the blocking yes/no prompt into two requests: the
// first call answers "no" and mints a token, a retry carrying that token
// answers "yes".
type tokenConfirmer struct {
	codec  *securecookie.SecureCookie
	claims confirmClaims
	token  string // presented by the client
	issued string // minted for the client
	prompt string
	asked  bool
}

var errConfirmMint = errors.New("could not issue confirmation token")

func (c *tokenConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.asked = true
	c.prompt = prompt
	if c.token != "" {
		var got confirmClaims
		if err := c.codec.Decode(confirmTokenName, c.token, &got); err == nil && got == c.claims {
			return true, nil
		}
	}
	tok, err := c.codec.Encode(confirmTokenName, c.claims)
	if err != nil {
		return false, errConfirmMint
	}
	c.issued = tok
	return false, nil
}

func newConfirmCodec(key string) *securecookie.SecureCookie {
	sc := securecookie.New([]byte(key), nil)
	sc.MaxAge(int(ConfirmTTL.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return sc
}
