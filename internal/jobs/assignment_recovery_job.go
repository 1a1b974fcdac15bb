package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentRecoveryJob periodically sweeps the database for verified
// orders that still have no driver and feeds them back into the retry
// scheduler. It covers orders whose in-memory timers were lost to a
// process restart.
type AssignmentRecoveryJob struct {
	uowFactory commands.OrderUoWFactory
	scheduler  commands.AssignmentScheduler
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewAssignmentRecoveryJob creates the recovery sweep. The scheduler's
// Schedule is idempotent, so re-discovering an order that already has a
// pending retry is harmless.
func NewAssignmentRecoveryJob(
	uowFactory commands.OrderUoWFactory,
	scheduler commands.AssignmentScheduler,
	logger *slog.Logger,
) *AssignmentRecoveryJob {
	return &AssignmentRecoveryJob{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		cron:       cron.New(),
		logger:     logger.With("component", "assignment_recovery_job"),
	}
}

// Start begins the recovery sweep, running once a minute.
func (j *AssignmentRecoveryJob) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		ctx := context.Background()
		if err := j.sweep(ctx); err != nil {
			j.logger.ErrorContext(ctx, "assignment recovery sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("assignment recovery job started (running every minute)")
	return nil
}

// Stop stops the recovery sweep.
func (j *AssignmentRecoveryJob) Stop() {
	j.cron.Stop()
	j.logger.Info("assignment recovery job stopped")
}

func (j *AssignmentRecoveryJob) sweep(ctx context.Context) error {
	uow := j.uowFactory.Create()

	orders, err := uow.OrderRepository().GetAwaitingAssignment(ctx)
	if err != nil {
		return err
	}

	for _, aggregate := range orders {
		j.scheduler.Schedule(aggregate.ID())
	}

	if len(orders) > 0 {
		j.logger.InfoContext(ctx, "assignment recovery sweep completed",
			"orders_scheduled", len(orders))
	}
	return nil
}
