package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete_SendsPartsAndJoinsText(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("api key header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Kal "},{"text":"chutti hai."}]}}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	text, err := SummarizeImage(context.Background(), c, []byte{0xff, 0xd8}, "")
	if err != nil {
		t.Fatalf("SummarizeImage: %v", err)
	}
	if text != "Kal chutti hai." {
		t.Errorf("text: %q", text)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("request shape: %+v", got)
	}
	parts := got.Contents[0].Parts
	if parts[0].Text != SummarizePrompt {
		t.Errorf("prompt: %q", parts[0].Text)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/jpeg" || parts[1].InlineData.Data != "/9g=" {
		t.Errorf("image part: %+v", parts[1].InlineData)
	}
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"no candidates", 200, `{"candidates":[]}`, ErrEmptyResponse, ""},
		{"blank text", 200, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, ErrEmptyResponse, ""},
		{"api error", 400, `{"error":{"code":400,"message":"API key not valid"}}`, nil, "API key not valid"},
		{"non-json error", 502, `bad gateway`, nil, "status=502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := Chat(context.Background(), New(Config{BaseURL: srv.URL}), "hi")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
			if calls != 1 {
				t.Errorf("expected exactly one request, got %d", calls)
			}
		})
	}
}

func TestComplete_NoParts(t *testing.T) {
	if _, err := New(Config{}).Complete(context.Background()); err == nil {
		t.Error("expected error for empty prompt")
	}
}
