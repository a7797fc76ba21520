package store

import (
	"context"
	"errors"
)

// ErrNoFreeRunSlot is returned when a new run date arrives and every slot is
// already bound to a different date.
var ErrNoFreeRunSlot = errors.New("no free run slot")

type RunSlotStore interface {
	ListSlots(ctx context.Context) ([]RunSlot, error)
	ResetRuns(ctx context.Context) error
}
