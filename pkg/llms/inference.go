package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

// maxInferenceResponseSize bounds how much of a response body is read.
const maxInferenceResponseSize = 4 << 20

// InferenceClient calls a Hugging Face compatible inference endpoint:
// POST {base_url}/models/{model} with {"inputs": ..., "parameters": ...}.
type InferenceClient struct {
	baseURL string
	token   string
	client  *retryablehttp.Client
}

func NewInferenceClient(cfg *config.Config) (*InferenceClient, error) {
	if cfg.Inference.BaseURL == "" {
		return nil, errors.New("inference.base_url must be set")
	}
	if _, err := url.Parse(cfg.Inference.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid inference.base_url: %w", err)
	}

	return &InferenceClient{
		baseURL: strings.TrimRight(cfg.Inference.BaseURL, "/"),
		token:   cfg.Inference.APIToken,
		client:  NewRetryableHTTPClient(cfg.Inference.MaxRetries, cfg.Inference.Timeout),
	}, nil
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// SummarizationParams are passed through to the summarization model.
type SummarizationParams struct {
	MinLength int
	MaxLength int
}

type summaryOutput struct {
	SummaryText *string `json:"summary_text"`
}

// Summarize returns the summary_text of the first generated summary.
func (c *InferenceClient) Summarize(
	ctx context.Context,
	model, text string,
	params SummarizationParams,
) (string, error) {
	body := inferenceRequest{
		Inputs: text,
		Parameters: map[string]any{
			"min_length": params.MinLength,
			"max_length": params.MaxLength,
			"do_sample":  false,
		},
	}

	var out []summaryOutput
	if err := c.post(ctx, model, body, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0].SummaryText == nil {
		return "", fmt.Errorf("%w: no summary_text in response", models.ErrModelOutputInvalid)
	}

	return *out[0].SummaryText, nil
}

// Label is one class of a text classification output.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the labels of a text classification model, best first.
func (c *InferenceClient) Classify(ctx context.Context, model, text string) ([]Label, error) {
	var raw json.RawMessage
	if err := c.post(ctx, model, inferenceRequest{Inputs: text}, &raw); err != nil {
		return nil, err
	}

	// single inputs come back either nested per input or flat
	var labels []Label
	var nested [][]Label
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		labels = nested[0]
	} else if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrModelOutputInvalid, err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels in response", models.ErrModelOutputInvalid)
	}
	for _, l := range labels {
		if l.Label == "" {
			return nil, fmt.Errorf("%w: empty label in response", models.ErrModelOutputInvalid)
		}
	}

	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })

	return labels, nil
}

type inferenceError struct {
	Error string `json:"error"`
}

func (c *InferenceClient) post(ctx context.Context, model string, body inferenceRequest, out any) error {
	body.Options = map[string]any{"wait_for_model": true}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/models/" + model
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", models.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInferenceResponseSize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: reading response: %w", models.ErrModelUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr inferenceError
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		log.Debugf("inference call to %s returned %d: %s", model, resp.StatusCode, message)
		return fmt.Errorf("%w: %s returned %d: %s", models.ErrModelUnavailable, model, resp.StatusCode, message)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", models.ErrModelOutputInvalid, err)
	}

	return nil
}
