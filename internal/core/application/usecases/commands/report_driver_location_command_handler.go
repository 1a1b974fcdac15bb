package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
)

// ErrDriverCapabilityRequired is returned when a non-driver actor tries to
// report a location.
var ErrDriverCapabilityRequired = errors.New("driver capability is required")

// ReportDriverLocationCommandHandler stores a driver's reported position.
// Each report replaces the previous one, so the store always holds one
// last-known position per driver.
type ReportDriverLocationCommandHandler struct {
	uowFactory DriverUoWFactory
}

// NewReportDriverLocationCommandHandler creates a handler for location
// reports.
func NewReportDriverLocationCommandHandler(
	uowFactory DriverUoWFactory,
) ReportDriverLocationCommandHandler {
	return ReportDriverLocationCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the location report. The report time is taken server
// side so client clock skew cannot make a stale driver look fresh.
func (h ReportDriverLocationCommandHandler) Handle(
	ctx context.Context,
	cmd ReportDriverLocationCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Role().CanDrive() {
		return ErrDriverCapabilityRequired
	}

	location, err := driver.NewLocation(cmd.Point(), time.Now().UTC())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DriverRepository().UpsertLocation(ctx, cmd.Actor().ID(), location); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
