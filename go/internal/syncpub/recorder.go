package syncpub

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder appends sync events to the outbox table. It shares the
// session store's database handle.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates the outbox table if needed.
func NewRecorder(ctx context.Context, db *sql.DB) (*Recorder, error) {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sync_outbox (
	id         TEXT PRIMARY KEY,
	game_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at TEXT NOT NULL,
	sent_at    TEXT
)`); err != nil {
		return nil, fmt.Errorf("create sync_outbox table: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Record appends one event. ID and CreatedAt are filled when zero.
func (r *Recorder) Record(ctx context.Context, ev SyncEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sync_outbox(id, game_id, event_type, payload, created_at) VALUES (?, ?, ?, ?, ?)
`, ev.ID.String(), ev.GameID, ev.EventType, []byte(ev.Payload), ev.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record sync event: %w", err)
	}
	return nil
}

// RecordSaved records a completed auto-save of one field group. Wired as
// the orchestrator's OnSaved hook; failed saves are not sync events.
func (r *Recorder) RecordSaved(ctx context.Context, group, gameID string) error {
	payload, err := json.Marshal(map[string]string{"group": group, "game_id": gameID})
	if err != nil {
		return fmt.Errorf("encode saved payload: %w", err)
	}
	return r.Record(ctx, SyncEvent{
		GameID:    gameID,
		EventType: EventSessionSaved,
		Payload:   payload,
	})
}
