package orchestrator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchlineapp/touchline/go/internal/models"
	"github.com/touchlineapp/touchline/go/internal/session"
	"github.com/touchlineapp/touchline/go/internal/storage"
	"github.com/touchlineapp/touchline/go/internal/visibility"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *clockwork.FakeClock, *storage.MemStore, *visibility.Bus) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	store := storage.NewMemStore()
	bus := visibility.NewBus()
	o := New(Config{
		Clock:      fc,
		Store:      store,
		Visibility: bus,
	})
	t.Cleanup(o.Close)
	require.NoError(t, o.NewGame(context.Background()))
	return o, fc, store, bus
}

// advanceUntil steps the fake clock in poll-sized increments until the
// condition holds, letting goroutine-driven effects land in between.
func advanceUntil(t *testing.T, fc *clockwork.FakeClock, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		fc.Advance(250 * time.Millisecond)
		return cond()
	}, 10*time.Second, time.Millisecond)
}

func TestDispatchRecordsAndUndoRestores(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t)

	o.Dispatch(session.SetOpponentName{Name: "Rovers"})
	o.Dispatch(session.AddGameEvent{Event: models.GameEvent{
		ID: "e1", Type: models.EventGoal, TimeSeconds: 30,
	}})
	require.Equal(t, 1, o.State().HomeScore)
	require.True(t, o.CanUndo())

	require.True(t, o.Undo())
	assert.Equal(t, 0, o.State().HomeScore)
	assert.Equal(t, "Rovers", o.State().OpponentName)
	require.True(t, o.CanRedo())

	require.True(t, o.Redo())
	assert.Equal(t, 1, o.State().HomeScore)
	assert.False(t, o.CanRedo())

	// The restored snapshots themselves were not re-recorded: one more
	// undo still lands on the opponent-name edit, not on a replay entry.
	require.True(t, o.Undo())
	require.True(t, o.Undo())
	assert.Equal(t, "", o.State().OpponentName)
}

func TestNoOpDispatchLeavesHistoryAlone(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t)

	o.Dispatch(session.SetOpponentName{Name: "Rovers"})
	require.True(t, o.CanUndo())
	require.True(t, o.Undo())
	require.False(t, o.CanUndo())

	// Setting the same name again produces no state change and no entry.
	o.Dispatch(session.SetOpponentName{Name: ""})
	assert.False(t, o.CanUndo())
}

func TestTimerTicksAdvanceElapsed(t *testing.T) {
	o, fc, _, _ := newTestOrchestrator(t)

	o.StartPause()
	s := o.State()
	require.Equal(t, models.GameStatusInProgress, s.GameStatus)
	require.True(t, s.IsTimerRunning)

	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= 2
	})
	assert.True(t, o.clock.IsRunning())
}

func TestStartPauseResumeKeepsElapsed(t *testing.T) {
	o, fc, _, _ := newTestOrchestrator(t)

	o.StartPause()
	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= 3
	})

	o.StartPause() // pause
	s := o.State()
	require.False(t, s.IsTimerRunning)
	require.Equal(t, models.GameStatusInProgress, s.GameStatus)
	paused := s.TimeElapsedSeconds
	require.GreaterOrEqual(t, paused, 3.0)

	// Time passing while paused changes nothing.
	fc.Advance(10 * time.Second)
	assert.Equal(t, paused, o.State().TimeElapsedSeconds)

	o.StartPause() // resume
	require.True(t, o.State().IsTimerRunning)
	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= paused+2
	})
}

func TestPeriodBoundaryEndsPeriodAndGame(t *testing.T) {
	o, fc, _, _ := newTestOrchestrator(t)

	o.Dispatch(session.SetPeriodDuration{Minutes: 1})
	o.StartPause()

	advanceUntil(t, fc, func() bool {
		return o.State().GameStatus == models.GameStatusPeriodEnd
	})
	s := o.State()
	assert.Equal(t, 60.0, s.TimeElapsedSeconds)
	assert.False(t, s.IsTimerRunning)
	assert.Equal(t, 1, s.CurrentPeriod)

	o.StartPause() // second period continues the single clock
	s = o.State()
	require.Equal(t, 2, s.CurrentPeriod)
	require.Equal(t, 60.0, s.TimeElapsedSeconds)

	advanceUntil(t, fc, func() bool {
		return o.State().GameStatus == models.GameStatusGameEnd
	})
	s = o.State()
	assert.Equal(t, 120.0, s.TimeElapsedSeconds)
	assert.False(t, s.IsTimerRunning)
}

func TestAutoSaveWritesSessionBlob(t *testing.T) {
	o, fc, store, _ := newTestOrchestrator(t)
	id := o.State().ID

	o.Dispatch(session.AddGameEvent{Event: models.GameEvent{
		ID: "e1", Type: models.EventGoal, TimeSeconds: 12,
	}})

	advanceUntil(t, fc, func() bool {
		_, ok, err := store.Load(context.Background(), storage.SavedGameKey(id))
		return err == nil && ok
	})

	raw, _, err := store.Load(context.Background(), storage.SavedGameKey(id))
	require.NoError(t, err)
	var saved models.GameSession
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, 1, saved.HomeScore)
	assert.Len(t, saved.GameEvents, 1)
}

func TestHiddenWritesTimerSnapshotSynchronously(t *testing.T) {
	o, fc, store, bus := newTestOrchestrator(t)
	id := o.State().ID

	o.StartPause()
	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= 5
	})

	bus.Publish(visibility.Hidden)

	raw, ok, err := store.Load(context.Background(), storage.KeyTimerState)
	require.NoError(t, err)
	require.True(t, ok, "snapshot must be durable before the handler returns")
	var snap models.TimerSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, id, snap.GameID)
	assert.True(t, snap.WasRunning)
	assert.GreaterOrEqual(t, snap.ElapsedSeconds, 5.0)
}

func TestVisibleRepairsSuspendedClock(t *testing.T) {
	o, fc, store, bus := newTestOrchestrator(t)
	id := o.State().ID

	o.StartPause()
	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= 10
	})

	// A snapshot written 30 wall-clock seconds ago while the host was
	// suspended: on return, elapsed jumps to saved + time away.
	snap := models.TimerSnapshot{
		GameID:             id,
		ElapsedSeconds:     o.State().TimeElapsedSeconds,
		WallClockTimestamp: fc.Now().Add(-30 * time.Second).UnixMilli(),
		WasRunning:         true,
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), storage.KeyTimerState, data))

	before := o.State().TimeElapsedSeconds
	bus.Publish(visibility.Visible)

	assert.Equal(t, before+30, o.State().TimeElapsedSeconds)
	assert.True(t, o.State().IsTimerRunning)

	// The snapshot is single-use.
	_, ok, err := store.Load(context.Background(), storage.KeyTimerState)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaleSnapshotFromOtherGameIgnored(t *testing.T) {
	o, fc, store, bus := newTestOrchestrator(t)

	o.StartPause()
	advanceUntil(t, fc, func() bool {
		return o.State().TimeElapsedSeconds >= 2
	})

	snap := models.TimerSnapshot{
		GameID:             "some-other-game",
		ElapsedSeconds:     500,
		WallClockTimestamp: fc.Now().Add(-time.Hour).UnixMilli(),
		WasRunning:         true,
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), storage.KeyTimerState, data))

	before := o.State().TimeElapsedSeconds
	bus.Publish(visibility.Visible)
	assert.Equal(t, before, o.State().TimeElapsedSeconds)
}

func TestTacticsHistoryIsIndependent(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t)

	o.Dispatch(session.SetOpponentName{Name: "Rovers"})
	o.Dispatch(session.PlaceTacticalDisc{Disc: models.TacticalDisc{
		ID: "d1", Kind: models.DiscPlayer, Pos: models.Point{X: 0.5, Y: 0.5},
	}})
	require.Len(t, o.State().Tactical.Discs, 1)

	require.True(t, o.UndoTactics())
	assert.Empty(t, o.State().Tactical.Discs)
	// The board undo never touched match state or match history.
	assert.Equal(t, "Rovers", o.State().OpponentName)
	assert.True(t, o.CanUndo())

	require.True(t, o.RedoTactics())
	assert.Len(t, o.State().Tactical.Discs, 1)
}

func TestLoadGameRoundTrip(t *testing.T) {
	o, fc, store, _ := newTestOrchestrator(t)
	firstID := o.State().ID

	o.Dispatch(session.SetOpponentName{Name: "Rovers"})
	o.Dispatch(session.AddGameEvent{Event: models.GameEvent{
		ID: "e1", Type: models.EventGoal, TimeSeconds: 40,
	}})
	advanceUntil(t, fc, func() bool {
		_, ok, err := store.Load(context.Background(), storage.SavedGameKey(firstID))
		return err == nil && ok
	})

	require.NoError(t, o.NewGame(context.Background()))
	require.NotEqual(t, firstID, o.State().ID)
	require.Equal(t, 0, o.State().HomeScore)
	// New game resets history.
	assert.False(t, o.CanUndo())

	require.NoError(t, o.LoadGame(context.Background(), firstID))
	s := o.State()
	assert.Equal(t, firstID, s.ID)
	assert.Equal(t, "Rovers", s.OpponentName)
	assert.Equal(t, 1, s.HomeScore)
	assert.False(t, o.CanUndo())

	// The loaded game is now the recorded current game.
	raw, ok, err := store.Load(context.Background(), storage.KeyCurrentGameID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, firstID, string(raw))
}

func TestOpenFallsBackToNewGame(t *testing.T) {
	fc := clockwork.NewFakeClock()
	store := storage.NewMemStore()
	o := New(Config{Clock: fc, Store: store})
	t.Cleanup(o.Close)

	require.NoError(t, o.Open(context.Background()))
	require.NotNil(t, o.State())
	assert.Equal(t, models.GameStatusNotStarted, o.State().GameStatus)
}
