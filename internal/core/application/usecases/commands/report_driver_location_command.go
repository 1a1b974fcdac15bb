package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// ErrReportDriverLocationCommandIsNotConstructed is returned when using an
// improperly initialized ReportDriverLocationCommand.
var ErrReportDriverLocationCommandIsNotConstructed = errors.New(
	"ReportDriverLocationCommand must be created via NewReportDriverLocationCommand constructor",
)

// ReportDriverLocationCommand represents a driver reporting their current
// position. The reporting driver is the actor; drivers cannot report
// positions for each other.
type ReportDriverLocationCommand struct { //nolint:recvcheck //using for validation
	actor account.Actor
	point kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewReportDriverLocationCommand creates a location report command.
func NewReportDriverLocationCommand(
	actor account.Actor,
	point kernel.GeoPoint,
) (ReportDriverLocationCommand, error) {
	cmd := ReportDriverLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setPoint(point),
	); err != nil {
		return ReportDriverLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportDriverLocationCommandIsNotConstructed)
}

// Actor returns the reporting driver.
func (c ReportDriverLocationCommand) Actor() account.Actor {
	return c.actor
}

// Point returns the reported position.
func (c ReportDriverLocationCommand) Point() kernel.GeoPoint {
	return c.point
}

func (c *ReportDriverLocationCommand) setActor(actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *ReportDriverLocationCommand) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	c.point = point
	return nil
}
