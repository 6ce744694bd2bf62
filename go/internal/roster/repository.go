// Package roster manages the persistent team sheet: the players and
// staff a session's selection IDs refer to.
package roster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/touchlineapp/touchline/go/internal/models"
	"github.com/touchlineapp/touchline/go/internal/storage"
)

// KeyRoster is the storage key the team sheet lives under.
const KeyRoster = "roster"

// Repository persists the roster as one blob in the session store.
type Repository struct {
	store storage.Store
}

func NewRepository(store storage.Store) *Repository {
	return &Repository{store: store}
}

// Load returns the stored roster, or an empty one when none exists yet.
func (r *Repository) Load(ctx context.Context) (models.Roster, error) {
	raw, ok, err := r.store.Load(ctx, KeyRoster)
	if err != nil {
		return models.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	if !ok {
		return models.Roster{}, nil
	}
	var roster models.Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		return models.Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	return roster, nil
}

func (r *Repository) Save(ctx context.Context, roster models.Roster) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := r.store.Save(ctx, KeyRoster, data); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}
