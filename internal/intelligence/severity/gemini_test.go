package severity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

func modelReply(text string) string {
	reply := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func newTestEstimator(t *testing.T, handler http.HandlerFunc) *GeminiEstimator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	est, err := NewGeminiEstimator(config.IntelligenceConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return est
}

func testBatch(n int) []ReportForEstimate {
	batch := make([]ReportForEstimate, n)
	for i := range batch {
		batch[i] = ReportForEstimate{
			ID:          common.ID(fmt.Sprintf("r-%d", i+1)),
			Description: fmt.Sprintf("description %d", i+1),
		}
	}
	return batch
}

func TestNewGeminiEstimator_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiEstimator(config.IntelligenceConfig{BaseURL: "https://example.test"}, logging.NewNopLogger())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIUnavailable))
}

func TestEstimateBatch_OrderedResults(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "test-model:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, modelReply(`["LOW", "CRITICAL", "MEDIUM"]`))
	})

	estimates, err := est.EstimateBatch(context.Background(), testBatch(3))
	require.NoError(t, err)
	require.Len(t, estimates, 3)
	assert.Equal(t, common.ID("r-1"), estimates[0].ID)
	assert.Equal(t, report.SeverityLow, estimates[0].Severity)
	assert.Equal(t, report.SeverityCritical, estimates[1].Severity)
	assert.Equal(t, report.SeverityMedium, estimates[2].Severity)
}

func TestEstimateBatch_StripsCodeFences(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply("```json\n[\"HIGH\"]\n```"))
	})

	estimates, err := est.EstimateBatch(context.Background(), testBatch(1))
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.Equal(t, report.SeverityHigh, estimates[0].Severity)
}

func TestEstimateBatch_UnknownValueFailsWholeBatch(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(`["SEVERE", "low"]`))
	})

	estimates, err := est.EstimateBatch(context.Background(), testBatch(2))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIResponseInvalid))
	assert.Empty(t, estimates)
}

func TestEstimateBatch_ShortReplyFailsWholeBatch(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(`["LOW"]`))
	})

	estimates, err := est.EstimateBatch(context.Background(), testBatch(3))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIResponseInvalid))
	assert.Empty(t, estimates)
}

func TestEstimateBatch_ExtraValuesFailWholeBatch(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(`["LOW", "HIGH"]`))
	})

	_, err := est.EstimateBatch(context.Background(), testBatch(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIResponseInvalid))
}

func TestEstimateBatch_NormalizesCaseAndWhitespace(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(`[" low ", "Critical"]`))
	})

	estimates, err := est.EstimateBatch(context.Background(), testBatch(2))
	require.NoError(t, err)
	require.Len(t, estimates, 2)
	assert.Equal(t, report.SeverityLow, estimates[0].Severity)
	assert.Equal(t, report.SeverityCritical, estimates[1].Severity)
}

func TestEstimateBatch_EmptyBatch(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty batch")
	})

	estimates, err := est.EstimateBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, estimates)
}

func TestEstimateBatch_OversizeBatch(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an oversize batch")
	})

	_, err := est.EstimateBatch(context.Background(), testBatch(MaxBatchSize+1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIBatchTooLarge))
}

func TestEstimateBatch_Non200(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := est.EstimateBatch(context.Background(), testBatch(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIInferenceFailed))
}

func TestEstimateBatch_NoJSONArrayInReply(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply("I cannot assess these reports."))
	})

	_, err := est.EstimateBatch(context.Background(), testBatch(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAIResponseInvalid))
}

//Personal.AI order the ending
