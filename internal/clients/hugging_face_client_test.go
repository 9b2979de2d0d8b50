package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/sentiment"
)

func TestHuggingFaceClient_Classify(t *testing.T) {
	var got models.HFInferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/acme/sentiment", r.URL.Path)
		assert.Equal(t, "Bearer hf_x", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[[{"label":"POSITIVE","score":0.9},{"label":"NEGATIVE","score":0.1}]]`))
	}))
	defer srv.Close()

	hf := NewHuggingFaceClientAt(srv.URL+"/models", "hf_x", "acme/sentiment", srv.Client())
	out, err := hf.Classify(context.Background(), "Luffy is overpowered")
	require.NoError(t, err)

	assert.Equal(t, "Luffy is overpowered", got.Inputs)
	assert.InDelta(t, 0.9, sentiment.Score(out), 1e-9)
}

func TestHuggingFaceClient_ModelLoading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	}))
	defer srv.Close()

	hf := NewHuggingFaceClientAt(srv.URL, "", "m", srv.Client())
	_, err := hf.Classify(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currently loading")
}

func TestHuggingFaceClient_OddShapeIsNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"unexpected"`))
	}))
	defer srv.Close()

	out, err := NewHuggingFaceClientAt(srv.URL, "", "m", srv.Client()).Classify(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, 0.0, sentiment.Score(out))
}
