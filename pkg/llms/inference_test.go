package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

func newTestInferenceClient(t *testing.T, handler http.HandlerFunc) *InferenceClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewInferenceClient(&config.Config{
		Inference: config.InferenceConfig{
			BaseURL:  srv.URL + "/",
			APIToken: "hf-test",
			Timeout:  5 * time.Second,
		},
	})
	require.NoError(t, err)
	return client
}

func TestInferenceClientSummarize(t *testing.T) {
	client := newTestInferenceClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/facebook/bart-large-cnn", r.URL.Path)
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))

		var body struct {
			Inputs     string         `json:"inputs"`
			Parameters map[string]any `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a long journal entry", body.Inputs)
		assert.Equal(t, float64(10), body.Parameters["min_length"])
		assert.Equal(t, float64(50), body.Parameters["max_length"])
		assert.Equal(t, false, body.Parameters["do_sample"])

		_, _ = w.Write([]byte(`[{"summary_text": "A short entry."}, {"summary_text": "ignored"}]`))
	})

	summary, err := client.Summarize(
		context.Background(),
		"facebook/bart-large-cnn",
		"a long journal entry",
		SummarizationParams{MinLength: 10, MaxLength: 50},
	)
	require.NoError(t, err)
	assert.Equal(t, "A short entry.", summary)
}

func TestInferenceClientSummarizeInvalidOutput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty list", `[]`},
		{"missing field", `[{"generated_text": "x"}]`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestInferenceClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Summarize(context.Background(), "m", "text", SummarizationParams{})
			assert.ErrorIs(t, err, models.ErrModelOutputInvalid)
			assert.Equal(t, models.CodeModelOutputInvalid, models.CodeOf(err))
		})
	}
}

func TestInferenceClientClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nested", `[[{"label": "joy", "score": 0.2}, {"label": "sadness", "score": 0.7}, {"label": "fear", "score": 0.1}]]`},
		{"flat", `[{"label": "joy", "score": 0.2}, {"label": "sadness", "score": 0.7}, {"label": "fear", "score": 0.1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestInferenceClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			labels, err := client.Classify(context.Background(), "emotion-model", "I feel low")
			require.NoError(t, err)
			require.Len(t, labels, 3)
			assert.Equal(t, "sadness", labels[0].Label)
			assert.Equal(t, "joy", labels[1].Label)
		})
	}
}

func TestInferenceClientUnavailable(t *testing.T) {
	client := newTestInferenceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "Model is currently loading"}`))
	})

	_, err := client.Classify(context.Background(), "emotion-model", "text")
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "Model is currently loading")
	assert.Contains(t, err.Error(), "503")
}

func TestInferenceClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewInferenceClient(&config.Config{
		Inference: config.InferenceConfig{BaseURL: srv.URL, Timeout: time.Second},
	})
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), "m", "text", SummarizationParams{})
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestInferenceClientDeadline(t *testing.T) {
	client := newTestInferenceClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Classify(ctx, "emotion-model", "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.CodeTimeout, models.CodeOf(err))
}

func TestNewInferenceClientRequiresBaseURL(t *testing.T) {
	_, err := NewInferenceClient(&config.Config{})
	assert.Error(t, err)
}
