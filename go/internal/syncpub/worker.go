package syncpub

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config tunes the outbox drain loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Worker drains unsent outbox rows to the publisher on a poll loop.
type Worker struct {
	db        *sql.DB
	publisher Publisher
	clock     clockwork.Clock
	config    Config

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(db *sql.DB, publisher Publisher, clock clockwork.Clock, cfg Config) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Worker{
		db:        db,
		publisher: publisher,
		clock:     clock,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("sync worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("sync worker started")
	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("sync worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("sync worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Drain whatever a previous run left behind before the first tick.
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.Chan():
			w.processOutbox(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	events, err := w.fetchUnsent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch unsent sync events")
		return
	}
	if len(events) == 0 {
		return
	}

	log.Debug().Int("count", len(events)).Msg("processing sync outbox")

	var sentIDs []string
	for _, ev := range events {
		if err := w.publishWithRetry(ctx, ev); err != nil {
			log.Error().Err(err).
				Str("event_id", ev.ID.String()).
				Str("event_type", ev.EventType).
				Msg("publish sync event")
			continue
		}
		sentIDs = append(sentIDs, ev.ID.String())
	}

	if len(sentIDs) > 0 {
		if err := w.markSent(ctx, sentIDs); err != nil {
			// Rows come back on the next poll; the publisher's dedupe
			// window absorbs the replays.
			log.Error().Err(err).Msg("mark sync events sent")
			return
		}
	}

	log.Info().
		Int("total", len(events)).
		Int("sent", len(sentIDs)).
		Msg("sync outbox drained")
}

func (w *Worker) fetchUnsent(ctx context.Context) ([]SyncEvent, error) {
	rows, err := w.db.QueryContext(ctx, `
SELECT id, game_id, event_type, payload, created_at
FROM sync_outbox WHERE sent_at IS NULL
ORDER BY created_at LIMIT ?
`, w.config.BatchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SyncEvent
	for rows.Next() {
		var (
			id      string
			ev      SyncEvent
			payload []byte
			created string
		)
		if err := rows.Scan(&id, &ev.GameID, &ev.EventType, &payload, &created); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt outbox row %s: %w", id, err)
		}
		ev.ID = parsed
		ev.Payload = json.RawMessage(payload)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			ev.CreatedAt = t
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (w *Worker) markSent(ctx context.Context, ids []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := w.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE sync_outbox SET sent_at = ? WHERE id IN (%s)`, placeholders),
		args...)
	return err
}

func (w *Worker) publishWithRetry(ctx context.Context, ev SyncEvent) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.clock.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := w.publisher.Publish(ctx, ev); err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("event_id", ev.ID.String()).
				Int("attempt", attempt+1).
				Msg("publish failed, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
