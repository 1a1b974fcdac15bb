package account

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when using an improperly initialized Actor.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the authenticated identity performing an operation, combining a
// user identifier with a capability role. It is an immutable value object;
// the zero value is invalid and must be constructed via NewActor.
//
// System-initiated operations (such as retry exhaustion) carry no actor at
// all: they pass a nil *Actor and are recorded with a null actor reference.
type Actor struct { //nolint:recvcheck //using for validation
	id   kernel.UUID
	role Role

	guard guard.ConstructorGuard
}

// NewActor creates an Actor from a validated identity and role.
func NewActor(id kernel.UUID, role Role) (Actor, error) {
	actor := Actor{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(actor.setID(id), actor.setRole(role)); err != nil {
		return Actor{}, err
	}

	return actor, nil
}

// Validate ensures the actor was created through the constructor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor's user identifier.
func (a Actor) ID() kernel.UUID {
	return a.id
}

// Role returns the actor's capability role.
func (a Actor) Role() Role {
	return a.role
}

func (a *Actor) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Actor) setRole(role Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	a.role = role
	return nil
}
