package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchlineapp/touchline/go/internal/storage"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(NewRepository(storage.NewMemStore()))
}

func TestAddPlayerPersists(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	p, err := app.AddPlayer(ctx, "Alex Morgan", 13)
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	roster, err := app.List(ctx)
	require.NoError(t, err)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "Alex Morgan", roster.Players[0].Name)
	assert.Equal(t, 13, roster.Players[0].JerseyNumber)
}

func TestAddPlayerRejectsDuplicateJersey(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	_, err := app.AddPlayer(ctx, "Alex", 7)
	require.NoError(t, err)
	_, err = app.AddPlayer(ctx, "Sam", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")

	// Zero means unassigned and never collides.
	_, err = app.AddPlayer(ctx, "Robin", 0)
	require.NoError(t, err)
	_, err = app.AddPlayer(ctx, "Charlie", 0)
	require.NoError(t, err)
}

func TestAddPlayerRejectsBlankName(t *testing.T) {
	_, err := newTestApp(t).AddPlayer(context.Background(), "   ", 0)
	require.Error(t, err)
}

func TestRemoveAndUpdatePlayer(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	p, err := app.AddPlayer(ctx, "Alex", 7)
	require.NoError(t, err)

	require.NoError(t, app.RenamePlayer(ctx, p.ID, "Alexandra"))
	require.NoError(t, app.SetGoalie(ctx, p.ID, true))
	require.NoError(t, app.AwardFairPlayCard(ctx, p.ID))

	roster, err := app.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", roster.Players[0].Name)
	assert.True(t, roster.Players[0].IsGoalie)
	assert.True(t, roster.Players[0].ReceivedFairPlayCard)

	require.NoError(t, app.RemovePlayer(ctx, p.ID))
	require.Error(t, app.RemovePlayer(ctx, p.ID))
}

func TestValidateSelectionDropsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	a, err := app.AddPlayer(ctx, "Alex", 7)
	require.NoError(t, err)
	b, err := app.AddPlayer(ctx, "Sam", 8)
	require.NoError(t, err)

	valid, unknown, err := app.ValidateSelection(ctx, []string{b.ID, "ghost", a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, valid)
	assert.Equal(t, []string{"ghost"}, unknown)
}

func TestPersonnel(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	m, err := app.AddPersonnel(ctx, "Pat", "assistant coach")
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)

	roster, err := app.List(ctx)
	require.NoError(t, err)
	require.Len(t, roster.Personnel, 1)
	assert.Equal(t, "assistant coach", roster.Personnel[0].Role)
}
