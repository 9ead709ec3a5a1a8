// Package lock serialises work on a festival across goroutines (Local) or
// across server instances (Redis).
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrBusy is returned when a lock could not be acquired.
var ErrBusy = errors.New("lock is held elsewhere")

// ErrLockLost is the cancellation cause when a held lock expires or is taken
// over before the work under it finished.
var ErrLockLost = errors.New("lock lost while held")

// Locker runs fn while holding the lock named by key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// FestivalKey returns the lock key guarding settlement of a festival.
func FestivalKey(festivalID string) string {
	return fmt.Sprintf("festival:%s:settlement", festivalID)
}
