package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var ErrEmptyCompletion = errors.New("model returned an empty completion")

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: REQUEST_TIMEOUT}),
	}, opts...)

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", REQUEST_TIMEOUT))
	return &OpenAIClient{Client: openai.NewClient(opts...), model: model}
}

func (o *OpenAIClient) GenerateReply(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	completion, err := o.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(openai.ChatModel(o.model)),
	})
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("[OpenAIClient] %w", ErrEmptyCompletion)
	}

	slog.Debug("[OpenAIClient] Completion received",
		slog.String("model", o.model),
		slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
