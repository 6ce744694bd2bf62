// Package orchestrator owns the live game session. It feeds actions
// through the reducer, mirrors the result into undo history and the
// auto-save pipeline, and keeps the match clock, wake lock and
// backgrounding snapshots in step with the state it holds.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/touchlineapp/touchline/go/internal/autosave"
	"github.com/touchlineapp/touchline/go/internal/gameclock"
	"github.com/touchlineapp/touchline/go/internal/history"
	"github.com/touchlineapp/touchline/go/internal/models"
	"github.com/touchlineapp/touchline/go/internal/report"
	"github.com/touchlineapp/touchline/go/internal/session"
	"github.com/touchlineapp/touchline/go/internal/storage"
	"github.com/touchlineapp/touchline/go/internal/visibility"
	"github.com/touchlineapp/touchline/go/internal/wakelock"
)

// Config assembles an Orchestrator. Store is required; everything else
// has a working default.
type Config struct {
	Clock      clockwork.Clock
	Store      storage.Store
	Reporter   report.Reporter
	WakeLock   wakelock.Lock
	Visibility *visibility.Bus
	HistoryMax int
	Delays     autosave.Delays
	// AutoSaveEnabled is consulted by the save pipeline at fire time.
	AutoSaveEnabled func() bool
	// OnSaved hears every completed auto-save attempt, success or not.
	OnSaved func(group, gameID string, err error)
}

// Orchestrator is the single writer of the session state. All methods
// are safe for concurrent use.
type Orchestrator struct {
	wall  clockwork.Clock
	store storage.Store
	rep   report.Reporter
	wake  wakelock.Lock
	bus   *visibility.Bus
	busID int

	clock *gameclock.PrecisionClock
	saver *autosave.Controller

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   *models.GameSession
	history *history.Log[session.HistorySlice]
	tactics *history.Log[models.TacticalState]
}

// New builds an orchestrator with no session loaded; call Open, LoadGame
// or NewGame before dispatching.
func New(cfg Config) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		wall:    cfg.Clock,
		store:   cfg.Store,
		rep:     cfg.Reporter,
		wake:    cfg.WakeLock,
		bus:     cfg.Visibility,
		ctx:     ctx,
		cancel:  cancel,
		history: history.NewLog[session.HistorySlice](cfg.HistoryMax),
		tactics: history.NewLog[models.TacticalState](cfg.HistoryMax),
	}
	if o.wall == nil {
		o.wall = clockwork.NewRealClock()
	}
	if o.rep == nil {
		o.rep = report.Nop{}
	}

	o.clock = gameclock.New(o.wall, o.handleTick)

	delays := cfg.Delays
	if delays.Short == 0 && delays.Long == 0 {
		delays = autosave.DefaultDelays()
	}
	o.saver = autosave.NewController(autosave.Config{
		Clock:    o.wall,
		Groups:   autosave.DefaultGroups(),
		Delays:   delays,
		Persist:  o.persistSession,
		Policy:   autosave.DefaultRetryPolicy(storage.IsTransient),
		Reporter: o.rep,
		Enabled:  cfg.AutoSaveEnabled,
		OnResult: cfg.OnSaved,
	})

	if o.bus != nil {
		o.busID = o.bus.Subscribe(o.onVisibility)
	}
	return o
}

// Open restores the last owned game, or starts a fresh one when none is
// recorded.
func (o *Orchestrator) Open(ctx context.Context) error {
	raw, ok, err := o.store.Load(ctx, storage.KeyCurrentGameID)
	if err != nil {
		return fmt.Errorf("read current game id: %w", err)
	}
	if ok {
		id := string(raw)
		loadErr := o.LoadGame(ctx, id)
		if loadErr == nil {
			return nil
		}
		log.Warn().Err(loadErr).Str("game_id", id).Msg("stored game unreadable, starting fresh")
	}
	return o.NewGame(ctx)
}

// State returns the current session. Callers must treat it as read-only;
// every mutation goes through Dispatch.
func (o *Orchestrator) State() *models.GameSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Dispatch runs one action through the reducer and applies its side
// effects: history recording per the classification table, clock and
// wake-lock synchronization, and auto-save observation. Actions that
// produce no state change are dropped before any side effect.
func (o *Orchestrator) Dispatch(a session.Action) {
	o.mu.Lock()
	prev := o.state
	if prev == nil {
		o.mu.Unlock()
		log.Warn().Str("action", string(a.Kind())).Msg("dispatch with no session loaded")
		return
	}
	next := session.Reduce(prev, a)
	if next == prev {
		o.mu.Unlock()
		return
	}
	o.state = next

	cl, known := classes[a.Kind()]
	if !known {
		log.Warn().Str("action", string(a.Kind())).Msg("unclassified action kind, recording in history")
		cl = class{history: true}
	}
	if cl.history {
		o.history.Push(session.SliceOf(next))
	}
	if cl.tactics {
		o.tactics.Push(next.Tactical.Clone())
	}
	o.mu.Unlock()

	// Clock and wake lock are touched outside the lock: a clock reset
	// re-enters Dispatch with its immediate tick.
	if cl.clockSync {
		o.clock.Reset(next.TimeElapsedSeconds)
		if next.IsTimerRunning {
			o.clock.Start()
		}
	}
	if o.wake != nil && prev.IsTimerRunning != next.IsTimerRunning {
		if next.IsTimerRunning {
			if err := o.wake.Acquire(o.ctx); err != nil {
				log.Warn().Err(err).Msg("wake lock acquire failed")
			}
		} else {
			if err := o.wake.Release(o.ctx); err != nil {
				log.Warn().Err(err).Msg("wake lock release failed")
			}
		}
	}

	o.saver.Observe(next)
}

// StartPause drives the single start/pause control: it starts period 1
// from notStarted, pauses or resumes during a period, and starts the
// next period from a period break.
func (o *Orchestrator) StartPause() {
	o.mu.Lock()
	s := o.state
	o.mu.Unlock()
	if s == nil {
		return
	}

	switch {
	case s.GameStatus == models.GameStatusNotStarted:
		o.Dispatch(session.StartPeriod{
			NextPeriod:            1,
			PeriodDurationMinutes: s.PeriodDurationMinutes,
			SubIntervalMinutes:    s.SubIntervalMinutes,
			Now:                   o.wall.Now(),
		})
	case s.GameStatus == models.GameStatusPeriodEnd:
		o.Dispatch(session.StartPeriod{
			NextPeriod:            s.CurrentPeriod + 1,
			PeriodDurationMinutes: s.PeriodDurationMinutes,
			SubIntervalMinutes:    s.SubIntervalMinutes,
			Now:                   o.wall.Now(),
		})
	case s.GameStatus == models.GameStatusInProgress && s.IsTimerRunning:
		precise := o.clock.CurrentTime()
		o.Dispatch(session.PauseTimer{PreciseTime: &precise})
	case s.GameStatus == models.GameStatusInProgress:
		o.Dispatch(session.ResumeTimer{Now: o.wall.Now()})
	}
}

// AckSubstitution confirms the current substitution interval.
func (o *Orchestrator) AckSubstitution() {
	o.Dispatch(session.ConfirmSubstitution{})
}

// SetSubInterval changes the substitution cadence.
func (o *Orchestrator) SetSubInterval(minutes int) {
	o.Dispatch(session.SetSubInterval{Minutes: minutes})
}

// Reset wipes match data while keeping identity, metadata and roster.
func (o *Orchestrator) Reset() {
	o.Dispatch(session.ResetGame{})
}

// Undo steps the match history back one entry. The restored slice is
// itself never re-recorded.
func (o *Orchestrator) Undo() bool {
	o.mu.Lock()
	slice, ok := o.history.Undo()
	o.mu.Unlock()
	if !ok {
		return false
	}
	o.Dispatch(session.ApplyHistorySnapshot{Slice: slice})
	return true
}

// Redo steps the match history forward one entry.
func (o *Orchestrator) Redo() bool {
	o.mu.Lock()
	slice, ok := o.history.Redo()
	o.mu.Unlock()
	if !ok {
		return false
	}
	o.Dispatch(session.ApplyHistorySnapshot{Slice: slice})
	return true
}

// UndoTactics steps the tactics board back one entry.
func (o *Orchestrator) UndoTactics() bool {
	o.mu.Lock()
	st, ok := o.tactics.Undo()
	o.mu.Unlock()
	if !ok {
		return false
	}
	o.Dispatch(session.ApplyTacticalHistory{State: st})
	return true
}

// RedoTactics steps the tactics board forward one entry.
func (o *Orchestrator) RedoTactics() bool {
	o.mu.Lock()
	st, ok := o.tactics.Redo()
	o.mu.Unlock()
	if !ok {
		return false
	}
	o.Dispatch(session.ApplyTacticalHistory{State: st})
	return true
}

func (o *Orchestrator) CanUndo() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history.CanUndo()
}

func (o *Orchestrator) CanRedo() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history.CanRedo()
}

// LoadGame rehydrates a stored session and makes it the live one. The
// auto-save baselines and both history logs rebase on the loaded state.
func (o *Orchestrator) LoadGame(ctx context.Context, gameID string) error {
	raw, ok, err := o.store.Load(ctx, storage.SavedGameKey(gameID))
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}
	if !ok {
		return fmt.Errorf("load game %s: not found", gameID)
	}
	var persisted models.GameSession
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}

	fresh := models.NewGameSession(gameID)
	loaded := session.Reduce(fresh, session.LoadPersistedGame{Data: &persisted})
	o.adopt(ctx, loaded)
	log.Info().Str("game_id", gameID).Msg("game loaded")
	return nil
}

// NewGame abandons the current session and starts a blank one, carrying
// over team name and roster selections the way a coach sets up the next
// fixture.
func (o *Orchestrator) NewGame(ctx context.Context) error {
	o.mu.Lock()
	prev := o.state
	o.mu.Unlock()

	s := models.NewGameSession(uuid.NewString())
	if prev != nil {
		s.TeamName = prev.TeamName
		s.SelectedPlayerIDs = append([]string(nil), prev.SelectedPlayerIDs...)
		s.SelectedPersonnelIDs = append([]string(nil), prev.SelectedPersonnelIDs...)
	}
	o.adopt(ctx, s)
	log.Info().Str("game_id", s.ID).Msg("new game started")
	return nil
}

// adopt installs a session as the live one and rebases every follower.
func (o *Orchestrator) adopt(ctx context.Context, s *models.GameSession) {
	o.clock.Stop()

	o.mu.Lock()
	o.state = s
	o.history.Reset(session.SliceOf(s))
	o.tactics.Reset(s.Tactical.Clone())
	o.mu.Unlock()

	o.saver.ResetBaselines(s)
	o.clock.Reset(s.TimeElapsedSeconds)
	if s.IsTimerRunning {
		o.clock.Start()
	}
	if o.wake != nil && !s.IsTimerRunning {
		_ = o.wake.Release(o.ctx)
	}

	if err := o.store.Save(ctx, storage.KeyCurrentGameID, []byte(s.ID)); err != nil {
		log.Warn().Err(err).Str("game_id", s.ID).Msg("could not record current game id")
	}
}

// Close stops the clock, abandons scheduled saves and detaches from the
// visibility bus. The store stays open; its owner closes it.
func (o *Orchestrator) Close() {
	if o.bus != nil {
		o.bus.Unsubscribe(o.busID)
	}
	o.clock.Stop()
	o.saver.Close()
	o.cancel()
}

// handleTick receives whole-second readings from the precision clock and
// turns the one crossing a period boundary into the end-of-period
// transition, pinned exactly to the boundary second.
func (o *Orchestrator) handleTick(seconds int) {
	o.mu.Lock()
	s := o.state
	o.mu.Unlock()
	if s == nil || !s.IsTimerRunning {
		return
	}

	boundary := s.PeriodEndSeconds(s.CurrentPeriod)
	if float64(seconds) < boundary {
		o.Dispatch(session.TimerTick{Elapsed: float64(seconds)})
		return
	}

	status := models.GameStatusPeriodEnd
	if s.CurrentPeriod >= s.NumPeriods {
		status = models.GameStatusGameEnd
	}
	final := boundary
	o.Dispatch(session.EndPeriodOrGame{NewStatus: status, FinalTime: &final})
}

// persistSession is the auto-save sink: one JSON blob per game.
func (o *Orchestrator) persistSession(ctx context.Context, s *models.GameSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return o.store.Save(ctx, storage.SavedGameKey(s.ID), data)
}

// onVisibility reacts to the host page leaving and re-entering the
// foreground. The hide-side snapshot is written synchronously: once the
// page is hidden nothing else gets a chance to run.
func (o *Orchestrator) onVisibility(sig visibility.Signal) {
	switch sig {
	case visibility.Hidden:
		o.snapshotTimer()
	case visibility.Visible, visibility.RestoredFromCache:
		o.restoreTimer()
	}
}

func (o *Orchestrator) snapshotTimer() {
	o.mu.Lock()
	s := o.state
	o.mu.Unlock()
	if s == nil {
		return
	}

	elapsed := s.TimeElapsedSeconds
	if s.IsTimerRunning {
		elapsed = o.clock.CurrentTime()
	}
	snap := models.TimerSnapshot{
		GameID:             s.ID,
		ElapsedSeconds:     elapsed,
		WallClockTimestamp: o.wall.Now().UnixMilli(),
		WasRunning:         s.IsTimerRunning,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := o.store.Save(o.ctx, storage.KeyTimerState, data); err != nil {
		o.rep.Report(err, report.Context{Operation: "timer_snapshot", GameID: s.ID})
	}
}

func (o *Orchestrator) restoreTimer() {
	raw, ok, err := o.store.Load(o.ctx, storage.KeyTimerState)
	if err != nil || !ok {
		return
	}
	var snap models.TimerSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		_ = o.store.Remove(o.ctx, storage.KeyTimerState)
		return
	}

	o.mu.Lock()
	s := o.state
	o.mu.Unlock()

	// A snapshot from a different game is stale, not restorable.
	if s != nil && snap.GameID == s.ID && snap.WasRunning && s.IsTimerRunning {
		elapsed := gameclock.RestoredElapsed(snap, o.wall.Now())
		if elapsed > s.TimeElapsedSeconds {
			o.Dispatch(session.RestoreTimerState{Elapsed: elapsed})
		}
	}
	_ = o.store.Remove(o.ctx, storage.KeyTimerState)
}

// PreciseElapsed exposes the fractional clock reading for display.
func (o *Orchestrator) PreciseElapsed() float64 {
	return o.clock.CurrentTime()
}
