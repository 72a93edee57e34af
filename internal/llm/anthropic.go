package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator implements Generator using the Anthropic API.
type AnthropicGenerator struct {
	client       anthropic.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float64
}

// AnthropicConfig holds configuration for the Anthropic generator.
type AnthropicConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// NewAnthropicGenerator creates a new Anthropic generator.
func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	return &AnthropicGenerator{
		client:       anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
	}
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
}

func (g *AnthropicGenerator) GenerateFromImage(ctx context.Context, image []byte, prompt string) (string, error) {
	msg := anthropic.NewUserMessage(
		anthropic.NewImageBlockBase64(
			http.DetectContentType(image),
			base64.StdEncoding.EncodeToString(image),
		),
		anthropic.NewTextBlock(prompt),
	)
	return g.complete(ctx, msg)
}

func (g *AnthropicGenerator) complete(ctx context.Context, msg anthropic.MessageParam) (string, error) {
	maxTokens := g.maxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		Messages:  []anthropic.MessageParam{msg},
		MaxTokens: int64(maxTokens),
	}
	if g.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: g.systemPrompt},
		}
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(g.temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &LLMError{Type: ErrorServerError, Message: "empty completion"}
	}
	return sb.String(), nil
}

func classifyAnthropicError(err error) *LLMError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	llmErr := &LLMError{Err: err, Message: msg}

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") || strings.Contains(lower, "authentication"):
		llmErr.Type = ErrorAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate_limit") || strings.Contains(lower, "rate limit"):
		llmErr.Type = ErrorRateLimit
	case strings.Contains(lower, "400") || strings.Contains(lower, "invalid_request"):
		llmErr.Type = ErrorInvalidInput
	case strings.Contains(lower, "500") || strings.Contains(lower, "529") || strings.Contains(lower, "overloaded"):
		llmErr.Type = ErrorServerError
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		llmErr.Type = ErrorTimeout
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dns") || strings.Contains(lower, "refused"):
		llmErr.Type = ErrorNetwork
	default:
		llmErr.Type = ErrorUnknown
	}
	return llmErr
}
