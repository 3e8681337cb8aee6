package jobs

import (
	"context"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"go.uber.org/zap"
)

// EconomicSnapshotJobName is the scheduler name of the snapshot job
const EconomicSnapshotJobName = "economic-snapshot"

// SnapshotCapturer records one economic snapshot.
// Declared here so the job does not import the service package.
type SnapshotCapturer interface {
	CaptureSnapshot(ctx context.Context) (*domain.EconomicSnapshot, error)
}

// EconomicSnapshotJob appends the current indicators to the snapshot history
type EconomicSnapshotJob struct {
	capturer SnapshotCapturer
	logger   *zap.Logger
	timeout  time.Duration
}

// NewEconomicSnapshotJob creates the job. timeout bounds a single run.
func NewEconomicSnapshotJob(capturer SnapshotCapturer, logger *zap.Logger, timeout time.Duration) *EconomicSnapshotJob {
	return &EconomicSnapshotJob{
		capturer: capturer,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run captures one snapshot. Failures are logged; the next run retries.
func (j *EconomicSnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := j.capturer.CaptureSnapshot(ctx)
	if err != nil {
		j.logger.Error("economic snapshot capture failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("economic snapshot captured",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Float64("exchange_rate", snapshot.ExchangeRate),
		zap.Float64("inflation", snapshot.Inflation),
		zap.Float64("cotton_price", snapshot.CottonPrice),
		zap.String("source", snapshot.Source),
		zap.Duration("duration", time.Since(start)))
}

// RegisterEconomicSnapshotJob adds the snapshot job to the scheduler.
// With runOnStartup the first capture happens in the background right away.
func RegisterEconomicSnapshotJob(scheduler *Scheduler, capturer SnapshotCapturer, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewEconomicSnapshotJob(capturer, logger, timeout)

	if err := scheduler.AddJob(EconomicSnapshotJobName, cronExpr, job.Run); err != nil {
		return err
	}
	if runOnStartup {
		go job.Run()
	}
	return nil
}
