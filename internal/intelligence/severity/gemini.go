package severity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second
)

// generateRequest / generateResponse mirror the generative-language API
// shapes this client touches.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiEstimator estimates report severity through the generative-language
// HTTP API. The model is instructed to judge the reported conduct itself,
// not the register of the prose describing it.
type GeminiEstimator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logging.Logger
}

// NewGeminiEstimator builds an estimator from cfg. The API key is required;
// callers gate construction on cfg.Enabled.
func NewGeminiEstimator(cfg config.IntelligenceConfig, log logging.Logger) (*GeminiEstimator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeAIUnavailable, "intelligence api key not configured")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &GeminiEstimator{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}, nil
}

var _ Estimator = (*GeminiEstimator)(nil)

// EstimateBatch sends up to MaxBatchSize descriptions in one prompt and
// returns severities in request order. Unrecognized values in the model
// reply degrade to MEDIUM; any transport or parse failure returns an error
// and no estimates.
func (e *GeminiEstimator) EstimateBatch(ctx context.Context, reports []ReportForEstimate) ([]Estimate, error) {
	if len(reports) == 0 {
		return nil, nil
	}
	if len(reports) > MaxBatchSize {
		return nil, errors.New(errors.ErrCodeAIBatchTooLarge,
			fmt.Sprintf("batch of %d exceeds limit of %d", len(reports), MaxBatchSize))
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(reports)}}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", e.baseURL, e.model, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIUnavailable, "severity estimation request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIUnavailable, "failed to read model response")
	}
	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("Severity estimation returned non-200",
			logging.Int("status", resp.StatusCode),
			logging.Int("batch_size", len(reports)),
		)
		return nil, errors.New(errors.ErrCodeAIInferenceFailed,
			fmt.Sprintf("model endpoint returned status %d", resp.StatusCode))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIResponseInvalid, "failed to decode model response")
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New(errors.ErrCodeAIResponseInvalid, "model response has no candidates")
	}

	return pairEstimates(reports, parsed.Candidates[0].Content.Parts[0].Text)
}

// pairEstimates extracts the JSON string array from the model text and zips
// it with the request batch. The reply must cover the batch exactly and
// every value must be a known severity; anything else fails the whole batch
// so the severities stay unset and the worker retries. Estimates are
// apply-once, so a guessed value here would stick permanently.
func pairEstimates(reports []ReportForEstimate, text string) ([]Estimate, error) {
	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(text))
	first := strings.Index(cleaned, "[")
	last := strings.LastIndex(cleaned, "]")
	if first == -1 || last == -1 || last < first {
		return nil, errors.New(errors.ErrCodeAIResponseInvalid, "model reply contains no JSON array")
	}

	var values []string
	if err := json.Unmarshal([]byte(cleaned[first:last+1]), &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIResponseInvalid, "model reply is not a string array")
	}
	if len(values) != len(reports) {
		return nil, errors.New(errors.ErrCodeAIResponseInvalid,
			fmt.Sprintf("model reply has %d values for a batch of %d", len(values), len(reports)))
	}

	estimates := make([]Estimate, 0, len(reports))
	for i, r := range reports {
		severity := report.Severity(strings.ToUpper(strings.TrimSpace(values[i])))
		if !report.ValidSeverity(severity) {
			return nil, errors.New(errors.ErrCodeAIResponseInvalid,
				fmt.Sprintf("model reply contains unknown severity %q", values[i]))
		}
		estimates = append(estimates, Estimate{ID: r.ID, Severity: severity})
	}
	return estimates, nil
}

//Personal.AI order the ending
