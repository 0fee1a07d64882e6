// internal/app/features/assistant/handler.go
package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyshare/internal/app/features/errors"
	"github.com/dalemusser/studyshare/internal/app/features/upload"
	"github.com/dalemusser/studyshare/internal/app/system/genai"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler passes questions and photographed papers to the model. The model
// is called once per request; failures answer with a fixed fallback text
// and status 200 so clients can show it inline.
type Handler struct {
	AI       genai.Completer
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	MaxBytes int64
}

func NewHandler(ai genai.Completer, maxBytes int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = upload.DefaultMaxBytes
	}
	return &Handler{AI: ai, ErrLog: errLog, Log: logger, MaxBytes: maxBytes}
}

type chatRequest struct {
	Query string `json:"query"`
}

type answer struct {
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback,omitempty"`
}

// HandleChat handles POST /api/assistant/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		uierrors.BadRequest(w, "Please type a question.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	reply, err := genai.Chat(ctx, h.AI, query)
	if err != nil {
		h.ErrLog.Log(r, "assistant chat failed", err)
		uierrors.JSON(w, http.StatusOK, answer{Answer: genai.ChatFallback, Fallback: true})
		return
	}
	uierrors.JSON(w, http.StatusOK, answer{Answer: reply})
}

// HandleSolutions handles POST /api/assistant/solutions (multipart "image").
func (h *Handler) HandleSolutions(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := upload.ReadImage(w, r, "image", h.MaxBytes)
	if err != nil {
		uierrors.BadRequest(w, "Please pick an image.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	reply, err := genai.SolveImage(ctx, h.AI, data, mimeType)
	if err != nil {
		h.ErrLog.Log(r, "assistant solutions failed", err)
		uierrors.JSON(w, http.StatusOK, answer{Answer: genai.ImageFallback, Fallback: true})
		return
	}
	uierrors.JSON(w, http.StatusOK, answer{Answer: reply})
}
