// Package syncpub ships locally persisted session changes to the team
// backend over NATS JetStream using an outbox table in the same sqlite
// database the session saves to. Recording an event and saving the
// session share one durability domain, so a crash can never acknowledge
// a save whose sync event was lost.
package syncpub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SyncEvent is one outbox row: a session change that still has to reach
// the backend.
type SyncEvent struct {
	ID        uuid.UUID
	GameID    string
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Event types emitted by the session save pipeline.
const (
	EventSessionSaved = "session.saved"
	EventGameStarted  = "game.started"
	EventGameEnded    = "game.ended"
)
