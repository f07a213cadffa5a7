package worker

import (
	"context"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/prometheus"
	"github.com/safeharbor-io/safeharbor/internal/intelligence/severity"
)

// Runner periodically estimates severity for reports that still lack one.
// Each pass fetches one batch, asks the estimator, and persists results
// apply-once: a severity set by hand between fetch and write wins.
type Runner struct {
	reports   report.Repository
	estimator severity.Estimator
	metrics   *prometheus.Metrics
	logger    logging.Logger

	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewRunner builds a Runner. metrics may be nil.
func NewRunner(
	reports report.Repository,
	estimator severity.Estimator,
	metrics *prometheus.Metrics,
	cfg config.WorkerConfig,
	log logging.Logger,
) *Runner {
	interval := cfg.ScanInterval
	if interval == 0 {
		interval = 15 * time.Minute
	}
	return &Runner{
		reports:   reports,
		estimator: estimator,
		metrics:   metrics,
		logger:    log,
		interval:  interval,
		batchSize: severity.MaxBatchSize,
		now:       time.Now,
	}
}

// Run executes passes until ctx is cancelled. The first pass runs
// immediately.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Severity estimation worker started",
		logging.Duration("interval", r.interval),
		logging.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Severity estimation worker stopped")
			return ctx.Err()
		case <-ticker.C:
			r.runPass(ctx)
		}
	}
}

// RunOnce executes a single estimation pass. The estimate CLI subcommand
// uses this for ad-hoc backfills.
func (r *Runner) RunOnce(ctx context.Context) {
	r.runPass(ctx)
}

// runPass processes one batch. Failures are logged and left for the next
// tick; the pass never aborts the worker.
func (r *Runner) runPass(ctx context.Context) {
	started := r.now()
	defer func() {
		if r.metrics != nil {
			r.metrics.ScanDuration.Observe(time.Since(started).Seconds())
		}
	}()

	pending, err := r.reports.ListUnestimated(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("Failed to list unestimated reports", logging.Err(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	batch := make([]severity.ReportForEstimate, len(pending))
	for i, rep := range pending {
		batch[i] = severity.ReportForEstimate{ID: rep.ID, Description: rep.Description}
	}

	estimates, err := r.estimator.EstimateBatch(ctx, batch)
	if err != nil {
		r.observeEstimate("error")
		r.logger.Warn("Severity estimation failed, batch left for retry",
			logging.Int("batch_size", len(batch)),
			logging.Err(err),
		)
		return
	}

	applied := 0
	for _, est := range estimates {
		if err := r.reports.SetSeverity(ctx, est.ID, est.Severity, false); err != nil {
			r.observeEstimate("persist_error")
			r.logger.Error("Failed to persist severity estimate",
				logging.String("report_id", string(est.ID)),
				logging.Err(err),
			)
			continue
		}
		applied++
	}
	r.observeEstimate("success")

	r.logger.Info("Severity estimation pass complete",
		logging.Int("fetched", len(pending)),
		logging.Int("estimated", len(estimates)),
		logging.Int("applied", applied),
	)
}

func (r *Runner) observeEstimate(outcome string) {
	if r.metrics != nil {
		r.metrics.SeverityEstimatesTotal.WithLabelValues(outcome).Inc()
	}
}

//Personal.AI order the ending
