package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/intelligence/severity"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) Create(ctx context.Context, r *report.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id common.ID, scope []common.TenantID) (*report.Report, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *mockReportRepo) GetByTrackingCode(ctx context.Context, code string) (*report.Report, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *mockReportRepo) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

func (m *mockReportRepo) ListUnestimated(ctx context.Context, limit int) ([]*report.Report, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id common.ID, scope []common.TenantID, status report.Status) error {
	return m.Called(ctx, id, scope, status).Error(0)
}

func (m *mockReportRepo) SetAcknowledged(ctx context.Context, id common.ID, scope []common.TenantID, ts *time.Time) error {
	return m.Called(ctx, id, scope, ts).Error(0)
}

func (m *mockReportRepo) SetAdminResponse(ctx context.Context, id common.ID, scope []common.TenantID, response string) error {
	return m.Called(ctx, id, scope, response).Error(0)
}

func (m *mockReportRepo) SetSeverity(ctx context.Context, id common.ID, s report.Severity, force bool) error {
	return m.Called(ctx, id, s, force).Error(0)
}

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) EstimateBatch(ctx context.Context, reports []severity.ReportForEstimate) ([]severity.Estimate, error) {
	args := m.Called(ctx, reports)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]severity.Estimate), args.Error(1)
}

func newTestRunner(repo report.Repository, est severity.Estimator) *Runner {
	return NewRunner(repo, est, nil, config.WorkerConfig{}, logging.NewNopLogger())
}

func TestRunPass_AppliesEstimates(t *testing.T) {
	repo := new(mockReportRepo)
	est := new(mockEstimator)

	pending := []*report.Report{
		{ID: "r-1", Description: "stolen office supplies"},
		{ID: "r-2", Description: "bribery in procurement"},
	}
	repo.On("ListUnestimated", mock.Anything, severity.MaxBatchSize).Return(pending, nil)
	est.On("EstimateBatch", mock.Anything, mock.MatchedBy(func(batch []severity.ReportForEstimate) bool {
		return len(batch) == 2 && batch[0].ID == "r-1" && batch[1].ID == "r-2"
	})).Return([]severity.Estimate{
		{ID: "r-1", Severity: report.SeverityLow},
		{ID: "r-2", Severity: report.SeverityCritical},
	}, nil)
	repo.On("SetSeverity", mock.Anything, common.ID("r-1"), report.SeverityLow, false).Return(nil)
	repo.On("SetSeverity", mock.Anything, common.ID("r-2"), report.SeverityCritical, false).Return(nil)

	newTestRunner(repo, est).runPass(context.Background())

	repo.AssertExpectations(t)
	est.AssertExpectations(t)
}

func TestRunPass_EmptyBacklogSkipsEstimator(t *testing.T) {
	repo := new(mockReportRepo)
	est := new(mockEstimator)
	repo.On("ListUnestimated", mock.Anything, severity.MaxBatchSize).Return([]*report.Report{}, nil)

	newTestRunner(repo, est).runPass(context.Background())

	est.AssertNotCalled(t, "EstimateBatch", mock.Anything, mock.Anything)
}

func TestRunPass_EstimatorFailureLeavesBatchForRetry(t *testing.T) {
	repo := new(mockReportRepo)
	est := new(mockEstimator)

	repo.On("ListUnestimated", mock.Anything, severity.MaxBatchSize).Return([]*report.Report{
		{ID: "r-1", Description: "something"},
	}, nil)
	est.On("EstimateBatch", mock.Anything, mock.Anything).
		Return(nil, pkgerrors.New(pkgerrors.ErrCodeAIUnavailable, "endpoint down"))

	newTestRunner(repo, est).runPass(context.Background())

	repo.AssertNotCalled(t, "SetSeverity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunPass_PersistErrorDoesNotAbortBatch(t *testing.T) {
	repo := new(mockReportRepo)
	est := new(mockEstimator)

	repo.On("ListUnestimated", mock.Anything, severity.MaxBatchSize).Return([]*report.Report{
		{ID: "r-1", Description: "a"},
		{ID: "r-2", Description: "b"},
	}, nil)
	est.On("EstimateBatch", mock.Anything, mock.Anything).Return([]severity.Estimate{
		{ID: "r-1", Severity: report.SeverityLow},
		{ID: "r-2", Severity: report.SeverityHigh},
	}, nil)
	repo.On("SetSeverity", mock.Anything, common.ID("r-1"), report.SeverityLow, false).
		Return(pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "write failed"))
	repo.On("SetSeverity", mock.Anything, common.ID("r-2"), report.SeverityHigh, false).Return(nil)

	newTestRunner(repo, est).runPass(context.Background())

	repo.AssertExpectations(t)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := new(mockReportRepo)
	est := new(mockEstimator)
	repo.On("ListUnestimated", mock.Anything, severity.MaxBatchSize).Return([]*report.Report{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestRunner(repo, est).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

//Personal.AI order the ending
