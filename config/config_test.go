package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "SENTIMENT_BACKEND", "TRACKING_BACKEND", "DATA_DIR",
		"HEATMAP_DIR", "REDDIT_USER_AGENT", "USER_AGENT", "POLL_SCHEDULE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, LLMProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, SentimentHuggingFace, cfg.Sentiment.Backend)
	assert.Equal(t, TrackingCSV, cfg.Storage.Backend)
	assert.Equal(t, "replybot/0.1", cfg.Reddit.UserAgent)
	assert.Equal(t, "@every 6h", cfg.PollSchedule)
	assert.Equal(t, "heatmaps", cfg.Storage.HeatmapDir)
}

func TestLoadFallsBackToLegacyNames(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("CLIENT_ID", "legacy-id")
	t.Setenv("REDDIT_USER_AGENT", "")
	t.Setenv("USER_AGENT", "legacy-agent")

	cfg := Load()
	assert.Equal(t, "legacy-id", cfg.Reddit.ClientID)
	assert.Equal(t, "legacy-agent", cfg.Reddit.UserAgent)
}

func TestRequireReddit(t *testing.T) {
	cfg := Config{Reddit: RedditConfig{ClientID: "id", ClientSecret: "secret"}}
	require.NoError(t, cfg.RequireReddit(false))

	err := cfg.RequireReddit(true)
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "REDDIT_USERNAME")
	assert.Contains(t, err.Error(), "REDDIT_PASSWORD")
}

func TestRequireLLM(t *testing.T) {
	tests := []struct {
		name    string
		llm     LLMConfig
		wantErr bool
	}{
		{"openai with key", LLMConfig{Provider: LLMProviderOpenAI, OpenAIAPIKey: "k"}, false},
		{"openai without key", LLMConfig{Provider: LLMProviderOpenAI}, true},
		{"gemini with key", LLMConfig{Provider: LLMProviderGemini, GeminiAPIKey: "k"}, false},
		{"gemini without key", LLMConfig{Provider: LLMProviderGemini}, true},
		{"unknown provider", LLMConfig{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{LLM: tt.llm}.RequireLLM()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequireSentiment(t *testing.T) {
	assert.ErrorIs(t, Config{Sentiment: SentimentConfig{Backend: SentimentHuggingFace}}.RequireSentiment(), ErrMissingConfig)
	assert.NoError(t, Config{Sentiment: SentimentConfig{Backend: SentimentVader}}.RequireSentiment())
	assert.Error(t, Config{Sentiment: SentimentConfig{Backend: "magic"}}.RequireSentiment())
}
