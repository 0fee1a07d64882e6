// Package apiclient talks to the StudyShare HTTP API. It implements the
// catalog collaborators (Fetcher, Deleter, Storage) so the terminal client
// runs the same controller the server does, and keeps the session cookie
// in a cookie jar that can be saved between runs.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/studyshare/internal/app/system/authctx"
	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each HTTP round trip.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("studyshare api: %d %s", e.Status, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL string        // e.g. http://localhost:8080
	Timeout time.Duration // per request, DefaultTimeout if zero
	Logger  *zap.Logger
}

// Client is safe for concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	files *http.Client // no overall timeout; downloads are bounded by ctx
	log   *zap.Logger

	mu    sync.Mutex
	links map[string]string // object path -> public URL
}

var (
	_ catalog.Fetcher  = (*Client)(nil)
	_ catalog.Deleter  = (*Client)(nil)
	_ catalog.Storage  = (*Client)(nil)
	_ authctx.Restorer = (*Client)(nil)
)

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:  base,
		http:  &http.Client{Jar: jar, Timeout: timeout},
		files: &http.Client{Jar: jar},
		log:   logger,
		links: make(map[string]string),
	}, nil
}

func (c *Client) endpoint(p string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends a request and decodes a JSON answer into out (which may be nil).
func (c *Client) do(ctx context.Context, method, p string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, q), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", p),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, p, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var b struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &b) != nil || b.Error == "" {
		b.Error = strings.TrimSpace(string(raw))
	}
	if b.Error == "" {
		b.Error = http.StatusText(resp.StatusCode)
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: b.Error}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.Join(apiErr, authctx.ErrSignedOut)
	}
	return apiErr
}

// ─── Sessions ────────────────────────────────────────────────────────────────

type credentials struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Signup(ctx context.Context, fullName, email, password string) (authctx.User, error) {
	var u authctx.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, credentials{FullName: fullName, Email: email, Password: password}, &u)
	return u, err
}

func (c *Client) Login(ctx context.Context, email, password string) (authctx.User, error) {
	var u authctx.User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, credentials{Email: email, Password: password}, &u)
	return u, err
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	if errors.Is(err, authctx.ErrSignedOut) {
		return nil
	}
	return err
}

// Me returns authctx.ErrSignedOut (joined with the APIError) when the
// session is missing or expired.
func (c *Client) Me(ctx context.Context) (authctx.User, error) {
	var u authctx.User
	err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &u)
	return u, err
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveSession writes the session cookies for the base URL to path (0600).
func (c *Client) SaveSession(path string) error {
	var saved []savedCookie
	for _, ck := range c.http.Jar.Cookies(c.base) {
		saved = append(saved, savedCookie{Name: ck.Name, Value: ck.Value})
	}
	b, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(path, b, 0o600)
}

// LoadSession restores cookies written by SaveSession. A missing file is
// not an error.
func (c *Client) LoadSession(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	var saved []savedCookie
	if err := json.Unmarshal(b, &saved); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	c.http.Jar.SetCookies(c.base, cookies)
	return nil
}

// ─── Catalog collaborators ───────────────────────────────────────────────────

type listResponse struct {
	Records []models.Record `json:"records"`
}

func (c *Client) FetchResources(ctx context.Context, q catalog.Query) ([]models.Record, error) {
	v := url.Values{}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.FormatInt(q.Limit, 10))
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/collections/"+url.PathEscape(string(q.Collection)), v, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil {
		resp.Records = []models.Record{}
	}
	return resp.Records, nil
}

// DeleteRecord reports a 403 as catalog.ErrNotOwner.
func (c *Client) DeleteRecord(ctx context.Context, coll models.Collection, id primitive.ObjectID) error {
	err := c.do(ctx, http.MethodDelete, "/api/collections/"+url.PathEscape(string(coll))+"/"+id.Hex(), nil, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
		return errors.Join(err, catalog.ErrNotOwner)
	}
	return err
}

type linkResponse struct {
	URL string `json:"url"`
}

// PublicURL asks the server once per path and caches the answer. It
// returns "" when the server cannot be reached.
func (c *Client) PublicURL(path string) string {
	c.mu.Lock()
	u, ok := c.links[path]
	c.mu.Unlock()
	if ok {
		return u
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout)
	defer cancel()
	var resp linkResponse
	if err := c.do(ctx, http.MethodGet, "/api/links", url.Values{"path": {path}}, nil, &resp); err != nil {
		c.log.Warn("public url lookup failed", zap.String("path", path), zap.Error(err))
		return ""
	}

	c.mu.Lock()
	c.links[path] = resp.URL
	c.mu.Unlock()
	return resp.URL
}

func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	var resp linkResponse
	q := url.Values{"path": {path}, "ttl": {ttl.String()}}
	if err := c.do(ctx, http.MethodGet, "/api/links", q, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Download fetches the object through a short-lived signed link. Only
// minting the link is subject to the per-request timeout; the transfer itself
// runs until ctx is done.
func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	link, err := c.SignedURL(ctx, path, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.files.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// ─── Assistant ───────────────────────────────────────────────────────────────

type answer struct {
	Answer string `json:"answer"`
}

// Chat asks the study assistant a question.
func (c *Client) Chat(ctx context.Context, query string) (string, error) {
	var a answer
	err := c.do(ctx, http.MethodPost, "/api/assistant/chat", nil, map[string]string{"query": query}, &a)
	return a.Answer, err
}

type notificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// Notification mirrors the server's feed entries.
type Notification struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Notifications returns the most recent announcements, newest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var resp notificationsResponse
	err := c.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &resp)
	return resp.Notifications, err
}
