package config

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Bot: BotConfig{
			SystemPrompt: "You are Lyla, a friendly virtual assistant. " +
				"Answer clearly and concisely, and keep a positive tone.",
			MaxHistory:    12,
			ChunkSize:     1700,
			ResetKeywords: []string{"RESET", "REINICIAR"},
			MaxTokens:     512,
			Temperature:   0.9,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			TimeoutSecs: 120,
		},
		Channels: ChannelsConfig{},
		Web: WebConfig{
			Enabled: true,
			Addr:    ":5000",
		},
	}
}
