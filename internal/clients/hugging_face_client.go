package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/sentiment"
)

const HF_INFERENCE_URL = "https://api-inference.huggingface.co/models"

// HuggingFaceClient classifies text with a hosted text-classification model
// on the Inference API.
type HuggingFaceClient struct {
	Client   *http.Client
	endpoint string
	token    string
}

func NewHuggingFaceClient(token, model string, client *http.Client) *HuggingFaceClient {
	return NewHuggingFaceClientAt(HF_INFERENCE_URL, token, model, client)
}

func NewHuggingFaceClientAt(baseURL, token, model string, client *http.Client) *HuggingFaceClient {
	if client == nil {
		client = &http.Client{Timeout: REQUEST_TIMEOUT}
	}
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("model", model),
		slog.Duration("timeout", client.Timeout))
	return &HuggingFaceClient{
		Client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + model,
		token:    token,
	}
}

func (h *HuggingFaceClient) Classify(ctx context.Context, text string) (sentiment.Output, error) {
	var out sentiment.Output
	start := time.Now()

	if err := h.postJSON(ctx, models.HFInferenceRequest{Inputs: text}, &out); err != nil {
		slog.Error("[HuggingFaceClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return sentiment.Output{}, err
	}

	slog.Debug("[HuggingFaceClient] Sentiment Analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, input any, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", DEFAULT_USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.HFErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("[HuggingFaceClient] status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("[HuggingFaceClient] status %d: %s", resp.StatusCode, preview(respBody))
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", h.endpoint),
			slog.String("raw_response", preview(respBody)),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("[HuggingFaceClient] failed to unmarshal response: %w", err)
	}
	return nil
}
