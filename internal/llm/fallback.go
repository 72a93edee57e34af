package llm

import (
	"context"
	"errors"
	"log"
)

// FallbackGenerator tries backends in order, falling back on retryable errors.
type FallbackGenerator struct {
	generators []Generator
}

// NewFallbackGenerator creates a backend chain. The first generator is primary.
func NewFallbackGenerator(generators ...Generator) *FallbackGenerator {
	return &FallbackGenerator{generators: generators}
}

func (f *FallbackGenerator) Name() string {
	if len(f.generators) > 0 {
		return f.generators[0].Name() + "+fallback"
	}
	return "fallback"
}

func (f *FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.attempt(func(g Generator) (string, error) {
		return g.Generate(ctx, prompt)
	})
}

func (f *FallbackGenerator) GenerateFromImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return f.attempt(func(g Generator) (string, error) {
		return g.GenerateFromImage(ctx, image, prompt)
	})
}

func (f *FallbackGenerator) attempt(call func(Generator) (string, error)) (string, error) {
	var lastErr error
	for _, g := range f.generators {
		text, err := call(g)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
		log.Printf("[fallback] backend %s failed: %v, trying next", g.Name(), err)
	}
	return "", lastErr
}

// isRetryable returns true for errors that warrant trying a different backend.
func isRetryable(err error) bool {
	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		return true // unknown errors are retryable
	}
	switch llmErr.Type {
	case ErrorAuth, ErrorInvalidInput:
		return false // these won't succeed on retry
	case ErrorRateLimit, ErrorServerError, ErrorTimeout, ErrorNetwork:
		return true
	default:
		return true
	}
}
