package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

// AutoAssigner runs one automatic matching attempt for an order.
// Satisfied by commands.AutoAssignOrderCommandHandler.
type AutoAssigner interface {
	Handle(ctx context.Context, cmd commands.AutoAssignOrderCommand) (kernel.UUID, error)
}

// OrderFailer moves an order to the failed status after matching gives up.
// Satisfied by commands.FailOrderCommandHandler.
type OrderFailer interface {
	Handle(ctx context.Context, cmd commands.FailOrderCommand) error
}

// RetryConfig carries the tunables of the assignment retry loop.
type RetryConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Validate checks that the retry configuration is usable.
func (c RetryConfig) Validate() error {
	if c.Interval <= 0 {
		return errs.NewValueIsInvalidError("interval")
	}
	if c.MaxAttempts <= 0 {
		return errs.NewValueIsInvalidError("maxAttempts")
	}
	return nil
}

type retryState struct {
	timer    *time.Timer
	attempts int
}

// AssignmentRetryScheduler re-runs automatic matching for orders that
// could not get a driver right away. Each order gets one pending timer;
// scheduling an order twice is a no-op, and cancelling stops the loop.
// After MaxAttempts unsuccessful tries the order is marked failed.
type AssignmentRetryScheduler struct {
	autoAssign AutoAssigner
	failOrder  OrderFailer
	config     RetryConfig
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[kernel.UUID]*retryState
	stopped bool
}

// NewAssignmentRetryScheduler creates the retry loop with the given
// matching and failure handlers.
func NewAssignmentRetryScheduler(
	autoAssign AutoAssigner,
	failOrder OrderFailer,
	config RetryConfig,
	logger *slog.Logger,
) (*AssignmentRetryScheduler, error) {
	if autoAssign == nil {
		return nil, errs.NewValueIsRequiredError("autoAssign")
	}
	if failOrder == nil {
		return nil, errs.NewValueIsRequiredError("failOrder")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &AssignmentRetryScheduler{
		autoAssign: autoAssign,
		failOrder:  failOrder,
		config:     config,
		logger:     logger.With("component", "assignment_retry_scheduler"),
		pending:    make(map[kernel.UUID]*retryState),
	}, nil
}

// Schedule arms a retry timer for the order. A no-op when a retry is
// already pending or the scheduler has been stopped.
func (s *AssignmentRetryScheduler) Schedule(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if _, exists := s.pending[orderID]; exists {
		return
	}

	state := &retryState{}
	state.timer = time.AfterFunc(s.config.Interval, func() {
		s.run(orderID)
	})
	s.pending[orderID] = state

	s.logger.Info("assignment retry scheduled",
		"order_id", orderID.String(), "interval", s.config.Interval)
}

// Cancel drops any pending retry for the order. Called when the order got
// a driver or reached a terminal status through another path.
func (s *AssignmentRetryScheduler) Cancel(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(orderID)
}

// Stop cancels every pending retry and rejects new schedules. Running
// attempts finish on their own.
func (s *AssignmentRetryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for orderID := range s.pending {
		s.remove(orderID)
	}
}

// PendingCount reports how many orders currently wait for a retry.
func (s *AssignmentRetryScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *AssignmentRetryScheduler) run(orderID kernel.UUID) {
	s.mu.Lock()
	state, exists := s.pending[orderID]
	if !exists || s.stopped {
		s.mu.Unlock()
		return
	}
	state.attempts++
	attempt := state.attempts
	s.mu.Unlock()

	ctx := context.Background()

	cmd, err := commands.NewAutoAssignOrderCommand(orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "assignment retry dropped", "order_id", orderID.String(), "error", err)
		s.Cancel(orderID)
		return
	}

	driverID, err := s.autoAssign.Handle(ctx, cmd)

	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "assignment retry succeeded",
			"order_id", orderID.String(), "driver_id", driverID.String(), "attempt", attempt)
		s.Cancel(orderID)

	case errors.Is(err, commands.ErrOrderNotAwaitingAssignment):
		// the order was matched, cancelled, or failed through another path
		s.Cancel(orderID)

	case attempt >= s.config.MaxAttempts:
		s.logger.WarnContext(ctx, "assignment retries exhausted",
			"order_id", orderID.String(), "attempts", attempt)
		s.Cancel(orderID)
		s.markFailed(ctx, orderID)

	default:
		if !errors.Is(err, services.ErrNoDriverAvailable) {
			s.logger.WarnContext(ctx, "assignment retry failed",
				"order_id", orderID.String(), "attempt", attempt, "error", err)
		}
		s.reschedule(orderID, state)
	}
}

func (s *AssignmentRetryScheduler) reschedule(orderID kernel.UUID, state *retryState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.remove(orderID)
		return
	}
	if _, exists := s.pending[orderID]; !exists {
		return
	}

	state.timer = time.AfterFunc(s.config.Interval, func() {
		s.run(orderID)
	})
}

func (s *AssignmentRetryScheduler) markFailed(ctx context.Context, orderID kernel.UUID) {
	cmd, err := commands.NewFailOrderCommand(orderID)
	if err == nil {
		err = s.failOrder.Handle(ctx, cmd)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mark order as failed",
			"order_id", orderID.String(), "error", err)
	}
}

// remove must be called with the mutex held.
func (s *AssignmentRetryScheduler) remove(orderID kernel.UUID) {
	if state, exists := s.pending[orderID]; exists {
		state.timer.Stop()
		delete(s.pending, orderID)
	}
}
