package scheduler

import (
	"go.uber.org/zap"

	"tradebook/internal/services"
)

// RevalueJob revalues every active portfolio at current market prices.
type RevalueJob struct {
	portfolios services.PortfolioServicer
	log        *zap.SugaredLogger
}

// NewRevalueJob creates the market revaluation job.
func NewRevalueJob(portfolios services.PortfolioServicer, log *zap.SugaredLogger) *RevalueJob {
	return &RevalueJob{portfolios: portfolios, log: log}
}

// Name implements Job.
func (j *RevalueJob) Name() string { return "revalue_portfolios" }

// Run implements Job. Individual portfolio failures are logged by the sweep and
// do not fail the job.
func (j *RevalueJob) Run() error {
	report, err := j.portfolios.RevalueAll()
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		j.log.Warnw("revaluation finished with failures", "revalued", report.Revalued, "failed", report.Failed)
	}
	return nil
}
