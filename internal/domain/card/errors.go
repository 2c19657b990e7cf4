package card

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded   = errors.New("card capacity exceeded")
	ErrDuplicateSelection = errors.New("duplicate selection")
	ErrStaleLockState     = errors.New("game locked since it was read")
	ErrUngradeableOutcome = errors.New("ungradeable outcome")
)

// CapacityError reports how many picks were already locked when an edit
// overflowed the card.
type CapacityError struct {
	Locked    int
	Requested int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %d locked + %d requested > %d", ErrCapacityExceeded, e.Locked, e.Requested, e.Max)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
