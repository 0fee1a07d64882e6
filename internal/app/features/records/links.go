// internal/app/features/records/links.go
package records

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type linkResponse struct {
	URL     string     `json:"url"`
	Expires *time.Time `json:"expires,omitempty"`
}

// ServeLink handles GET /api/links?path=&ttl=. Without ttl it returns the
// public URL; with ttl it returns a signed URL valid that long.
func (h *Handler) ServeLink(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimSpace(r.URL.Query().Get("path"))
	if p == "" {
		uierrors.BadRequest(w, "path is required")
		return
	}

	raw := r.URL.Query().Get("ttl")
	if raw == "" {
		u := h.Storage.PublicURL(p)
		if u == "" {
			uierrors.BadRequest(w, "invalid path")
			return
		}
		uierrors.JSON(w, http.StatusOK, linkResponse{URL: u})
		return
	}

	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		uierrors.BadRequest(w, "ttl must be a positive duration such as 1h")
		return
	}
	limit := h.MaxLinkTTL
	if limit <= 0 {
		limit = DefaultMaxLinkTTL
	}
	if ttl > limit {
		ttl = limit
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Storage.SignedURL(ctx, p, ttl)
	if err != nil {
		h.ErrLog.HTTPBadGateway(w, r, err, "Could not create link.", zap.String("path", p))
		return
	}
	exp := time.Now().Add(ttl).UTC()
	uierrors.JSON(w, http.StatusOK, linkResponse{URL: u, Expires: &exp})
}
