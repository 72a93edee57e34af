package config

import "fmt"

// Config is the top-level application configuration.
type Config struct {
	Bot         BotConfig      `json:"bot"`
	LLM         LLMConfig      `json:"llm"`
	FallbackLLM *LLMConfig     `json:"fallback_llm,omitempty"`
	Channels    ChannelsConfig `json:"channels"`
	Web         WebConfig      `json:"web"`
}

// BotConfig controls conversation behavior.
type BotConfig struct {
	SystemPrompt  string   `json:"system_prompt"`
	MaxHistory    int      `json:"max_history"`
	ChunkSize     int      `json:"chunk_size"`
	ResetKeywords []string `json:"reset_keywords,omitempty"`
	MaxTokens     int      `json:"max_tokens"`
	Temperature   float64  `json:"temperature"`
}

type LLMConfig struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	APIKey      string `json:"api_key,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	TimeoutSecs int    `json:"timeout_secs"`
}

type ChannelsConfig struct {
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Console  bool            `json:"console,omitempty"`
}

type TelegramConfig struct {
	Token      string  `json:"token"`
	AllowedIDs []int64 `json:"allowed_ids,omitempty"`
}

type WebConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// Validate checks for values that would misbehave at runtime.
// Called once at startup; a failure here is fatal.
func (c *Config) Validate() error {
	if c.Bot.ChunkSize <= 0 {
		return fmt.Errorf("invalid configuration: chunk_size must be positive, got %d", c.Bot.ChunkSize)
	}
	if c.Bot.MaxHistory < 0 {
		return fmt.Errorf("invalid configuration: max_history must not be negative, got %d", c.Bot.MaxHistory)
	}
	if c.Bot.MaxTokens <= 0 {
		return fmt.Errorf("invalid configuration: max_tokens must be positive, got %d", c.Bot.MaxTokens)
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("invalid configuration: llm provider is required")
	}
	return nil
}
