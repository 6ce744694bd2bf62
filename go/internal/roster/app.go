package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/touchlineapp/touchline/go/internal/models"
)

// App handles roster business logic on top of the repository.
type App struct {
	repo *Repository
}

func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

// AddPlayer validates and appends a player, returning the stored record.
// Jersey numbers must be unique when set; zero means unassigned.
func (a *App) AddPlayer(ctx context.Context, name string, jersey int) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}
	if jersey < 0 || jersey > 99 {
		return nil, fmt.Errorf("jersey number %d out of range", jersey)
	}

	roster, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if jersey != 0 {
		for _, p := range roster.Players {
			if p.JerseyNumber == jersey {
				return nil, fmt.Errorf("jersey number %d already taken by %s", jersey, p.Name)
			}
		}
	}

	player := models.Player{
		ID:           uuid.NewString(),
		Name:         name,
		JerseyNumber: jersey,
	}
	roster.Players = append(roster.Players, player)
	if err := a.repo.Save(ctx, roster); err != nil {
		return nil, err
	}
	return &player, nil
}

// RemovePlayer deletes a player by ID.
func (a *App) RemovePlayer(ctx context.Context, id string) error {
	roster, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, p := range roster.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("player %s not on roster", id)
	}
	roster.Players = append(roster.Players[:idx], roster.Players[idx+1:]...)
	return a.repo.Save(ctx, roster)
}

// RenamePlayer updates a player's name.
func (a *App) RenamePlayer(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}
	return a.updatePlayer(ctx, id, func(p *models.Player) { p.Name = name })
}

// SetGoalie flags or unflags a player as the goalie.
func (a *App) SetGoalie(ctx context.Context, id string, isGoalie bool) error {
	return a.updatePlayer(ctx, id, func(p *models.Player) { p.IsGoalie = isGoalie })
}

// AwardFairPlayCard marks the player's durable fair-play recognition.
func (a *App) AwardFairPlayCard(ctx context.Context, id string) error {
	return a.updatePlayer(ctx, id, func(p *models.Player) { p.ReceivedFairPlayCard = true })
}

func (a *App) updatePlayer(ctx context.Context, id string, mutate func(*models.Player)) error {
	roster, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	for i := range roster.Players {
		if roster.Players[i].ID == id {
			mutate(&roster.Players[i])
			return a.repo.Save(ctx, roster)
		}
	}
	return fmt.Errorf("player %s not on roster", id)
}

// AddPersonnel appends a staff member.
func (a *App) AddPersonnel(ctx context.Context, name, role string) (*models.Personnel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("personnel name is required")
	}
	roster, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	member := models.Personnel{ID: uuid.NewString(), Name: name, Role: role}
	roster.Personnel = append(roster.Personnel, member)
	if err := a.repo.Save(ctx, roster); err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns the full team sheet.
func (a *App) List(ctx context.Context) (models.Roster, error) {
	return a.repo.Load(ctx)
}

// ValidateSelection filters a proposed selection down to IDs actually on
// the roster, preserving order. Unknown IDs are reported, not applied;
// a selection referencing a deleted player must not survive into the
// session.
func (a *App) ValidateSelection(ctx context.Context, playerIDs []string) (valid, unknown []string, err error) {
	roster, err := a.repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]struct{}, len(roster.Players))
	for _, p := range roster.Players {
		known[p.ID] = struct{}{}
	}
	for _, id := range playerIDs {
		if _, ok := known[id]; ok {
			valid = append(valid, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return valid, unknown, nil
}
