// Package wakelock abstracts the display keep-awake resource toggled
// alongside the match clock. Acquisition is best effort; failures are
// logged by callers, never propagated.
package wakelock

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Lock is the keep-awake collaborator.
type Lock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// LogLock records transitions without holding any real resource. It is
// the default when the host platform offers no wake-lock facility.
type LogLock struct{}

func (LogLock) Acquire(context.Context) error {
	log.Debug().Msg("wake lock acquired")
	return nil
}

func (LogLock) Release(context.Context) error {
	log.Debug().Msg("wake lock released")
	return nil
}
