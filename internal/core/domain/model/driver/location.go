package driver

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrLocationIsNotConstructed is returned when using an improperly
// initialized Location.
var ErrLocationIsNotConstructed = errors.New("Location must be created via NewLocation constructor")

// Location is a driver's last reported position together with the time it
// was reported. It is an immutable value object; a new report produces a new
// Location rather than mutating the old one.
type Location struct { //nolint:recvcheck //using for validation
	point      kernel.GeoPoint
	reportedAt time.Time

	guard guard.ConstructorGuard
}

// NewLocation creates a Location from a validated point and report time.
func NewLocation(point kernel.GeoPoint, reportedAt time.Time) (Location, error) {
	location := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		location.setPoint(point),
		location.setReportedAt(reportedAt),
	); err != nil {
		return Location{}, err
	}

	return location, nil
}

// Validate ensures the location was created through the constructor.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Point returns the reported position.
func (l Location) Point() kernel.GeoPoint {
	return l.point
}

// ReportedAt returns the time the position was reported.
func (l Location) ReportedAt() time.Time {
	return l.reportedAt
}

func (l *Location) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	l.point = point
	return nil
}

func (l *Location) setReportedAt(reportedAt time.Time) error {
	if reportedAt.IsZero() {
		return errs.NewValueIsRequiredError("reportedAt")
	}
	l.reportedAt = reportedAt
	return nil
}
