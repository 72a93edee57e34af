package llm

import "context"

// Generator is the interface all generation backends must implement.
// It is a single-shot text function: prompt in, text out, may fail.
type Generator interface {
	// Generate produces a completion for a plain text prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateFromImage produces a completion for an image plus prompt.
	GenerateFromImage(ctx context.Context, image []byte, prompt string) (string, error)

	// Name returns the backend name (e.g. "openai", "anthropic").
	Name() string
}

// ErrorType classifies generation errors for fallback decisions.
type ErrorType int

const (
	ErrorUnknown      ErrorType = iota
	ErrorRateLimit              // 429
	ErrorAuth                   // 401/403
	ErrorInvalidInput           // 400
	ErrorServerError            // 500+
	ErrorTimeout                // context deadline exceeded
	ErrorNetwork                // connection refused, DNS, etc.
)

// LLMError wraps an error with a classification for fallback logic.
type LLMError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *LLMError) Unwrap() error {
	return e.Err
}
