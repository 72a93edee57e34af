package llm

import (
	"fmt"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/config"
)

// NewGenerator creates a generation backend from config.
func NewGenerator(cfg config.LLMConfig, bot config.BotConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai", "openrouter", "local":
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			SystemPrompt: bot.SystemPrompt,
			MaxTokens:    bot.MaxTokens,
			Temperature:  bot.Temperature,
		}), nil
	case "anthropic":
		return NewAnthropicGenerator(AnthropicConfig{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			SystemPrompt: bot.SystemPrompt,
			MaxTokens:    bot.MaxTokens,
			Temperature:  bot.Temperature,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
