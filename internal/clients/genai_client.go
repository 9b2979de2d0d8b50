package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

type GeminiClient struct {
	Client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("[GeminiClient] failed to create client: %w", err)
	}
	slog.Info("[GeminiClient] Gemini client initialized", slog.String("model", model))
	return &GeminiClient{Client: client, model: model}, nil
}

func (g *GeminiClient) GenerateReply(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.Client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("[GeminiClient] generate content failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("[GeminiClient] %w", ErrEmptyCompletion)
	}

	slog.Debug("[GeminiClient] Completion received",
		slog.String("model", g.model),
		slog.Duration("elapsed", time.Since(start)))
	return text, nil
}
