package genai

import "context"

// Prompts and the texts shown when the model cannot be reached.
const (
	SummarizePrompt = "Summarize the main points or notice from this image in hinglish:"
	SolvePrompt     = "Give answers to the questions in the image in brief:"

	ChatFallback  = "Failed to get response from AI."
	ImageFallback = "Failed to summarize image."
)

// Completer is the single call the assistants need.
type Completer interface {
	Complete(ctx context.Context, parts ...Part) (string, error)
}

// Chat answers a free-text question.
func Chat(ctx context.Context, c Completer, query string) (string, error) {
	return c.Complete(ctx, Text(query))
}

// SummarizeImage condenses a photographed notice.
func SummarizeImage(ctx context.Context, c Completer, image []byte, mimeType string) (string, error) {
	return c.Complete(ctx, Text(SummarizePrompt), Image(image, mimeType))
}

// SolveImage answers the questions visible in an image.
func SolveImage(ctx context.Context, c Completer, image []byte, mimeType string) (string, error) {
	return c.Complete(ctx, Text(SolvePrompt), Image(image, mimeType))
}
