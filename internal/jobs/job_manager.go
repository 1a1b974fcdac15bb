package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates the background machinery of driver assignment:
// the in-memory retry scheduler and the database recovery sweep.
type JobManager struct {
	scheduler   *AssignmentRetryScheduler
	recoveryJob *AssignmentRecoveryJob
}

// NewJobManager creates a job manager owning the retry scheduler and the
// recovery sweep built on top of it.
func NewJobManager(
	autoAssign AutoAssigner,
	failOrder OrderFailer,
	uowFactory commands.OrderUoWFactory,
	retryConfig RetryConfig,
	logger *slog.Logger,
) (*JobManager, error) {
	scheduler, err := NewAssignmentRetryScheduler(autoAssign, failOrder, retryConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create assignment retry scheduler: %w", err)
	}

	return &JobManager{
		scheduler:   scheduler,
		recoveryJob: NewAssignmentRecoveryJob(uowFactory, scheduler, logger),
	}, nil
}

// Scheduler exposes the retry scheduler so command handlers can schedule
// and cancel retries.
func (jm *JobManager) Scheduler() commands.AssignmentScheduler {
	return jm.scheduler
}

// StartAll starts all background jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.recoveryJob.Start(); err != nil {
		return fmt.Errorf("failed to start assignment recovery job: %w", err)
	}
	return nil
}

// StopAll stops all background jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.recoveryJob.Stop()
	jm.scheduler.Stop()
}
