// Package storage is the persistence boundary: a small key-value store
// contract plus the typed error classification that retry logic switches
// on. Errors are tagged with a kind where they originate, so nothing
// downstream ever inspects message strings.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a storage failure for retry purposes.
type Kind string

const (
	// KindTransient covers lock contention, quota pressure, timeouts and
	// other failures worth retrying.
	KindTransient Kind = "transient"
	// KindPermanent covers malformed input, serialization failures and
	// anything a retry cannot fix.
	KindPermanent Kind = "permanent"
)

// Error is a classified storage failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError tags err with a kind and the failing operation.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsTransient reports whether err carries the transient tag.
func IsTransient(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindTransient
}

// Store is the persistence collaborator. Implementations serialize their
// own writes per key; callers coordinate nothing beyond debounce.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	// Load reports ok=false when the key is absent, which is not an error.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Remove(ctx context.Context, key string) error
	Close() error
}

// Well-known keys.
const (
	// KeyTimerState holds the backgrounding TimerSnapshot.
	KeyTimerState = "timer_state"
	// KeyCurrentGameID names the game the orchestrator last owned.
	KeyCurrentGameID = "current_game_id"
)

// SavedGameKey returns the storage key for one game's full session blob.
func SavedGameKey(gameID string) string {
	return "saved_game:" + gameID
}
