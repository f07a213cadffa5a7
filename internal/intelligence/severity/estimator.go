package severity

import (
	"context"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// MaxBatchSize caps a single estimation request.
const MaxBatchSize = 20

// ReportForEstimate is the minimal projection sent to the model.
type ReportForEstimate struct {
	ID          common.ID
	Description string
}

// Estimate pairs a report with its estimated severity, in request order.
type Estimate struct {
	ID       common.ID
	Severity report.Severity
}

// Estimator assigns a severity level to a batch of report descriptions.
// Estimation is best-effort: callers must tolerate errors and leave the
// severity unset, to be retried on a later pass. Estimation never blocks
// report creation.
type Estimator interface {
	EstimateBatch(ctx context.Context, reports []ReportForEstimate) ([]Estimate, error)
}

//Personal.AI order the ending
