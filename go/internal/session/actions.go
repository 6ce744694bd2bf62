package session

import (
	"time"

	"github.com/touchlineapp/touchline/go/internal/models"
)

// ActionKind identifies a reducer action. Every kind must also appear in
// the orchestrator's classification table; an unclassified kind is logged
// as a defect at dispatch time.
type ActionKind string

const (
	KindStartPeriod          ActionKind = "START_PERIOD"
	KindEndPeriodOrGame      ActionKind = "END_PERIOD_OR_GAME"
	KindPauseTimer           ActionKind = "PAUSE_TIMER"
	KindResumeTimer          ActionKind = "RESUME_TIMER"
	KindTimerTick            ActionKind = "TIMER_TICK"
	KindRestoreTimerState    ActionKind = "RESTORE_TIMER_STATE"
	KindConfirmSubstitution  ActionKind = "CONFIRM_SUBSTITUTION"
	KindSetSubInterval       ActionKind = "SET_SUB_INTERVAL"
	KindAddGameEvent         ActionKind = "ADD_GAME_EVENT"
	KindUpdateGameEvent      ActionKind = "UPDATE_GAME_EVENT"
	KindDeleteGameEvent      ActionKind = "DELETE_GAME_EVENT"
	KindAdjustScore          ActionKind = "ADJUST_SCORE"
	KindSetTeamName          ActionKind = "SET_TEAM_NAME"
	KindSetOpponentName      ActionKind = "SET_OPPONENT_NAME"
	KindSetGameDetails       ActionKind = "SET_GAME_DETAILS"
	KindSetGameNotes         ActionKind = "SET_GAME_NOTES"
	KindSetAgeGroup          ActionKind = "SET_AGE_GROUP"
	KindSetSeasonID          ActionKind = "SET_SEASON_ID"
	KindSetTournamentID      ActionKind = "SET_TOURNAMENT_ID"
	KindSetHomeOrAway        ActionKind = "SET_HOME_OR_AWAY"
	KindSetNumPeriods        ActionKind = "SET_NUM_PERIODS"
	KindSetPeriodDuration    ActionKind = "SET_PERIOD_DURATION"
	KindSetSelectedPlayers   ActionKind = "SET_SELECTED_PLAYERS"
	KindSetSelectedPersonnel ActionKind = "SET_SELECTED_PERSONNEL"
	KindPlaceTacticalDisc    ActionKind = "PLACE_TACTICAL_DISC"
	KindMoveTacticalDisc     ActionKind = "MOVE_TACTICAL_DISC"
	KindRemoveTacticalDisc   ActionKind = "REMOVE_TACTICAL_DISC"
	KindAddDrawing           ActionKind = "ADD_DRAWING"
	KindClearDrawings        ActionKind = "CLEAR_DRAWINGS"
	KindResetGame            ActionKind = "RESET_GAME"
	KindLoadPersistedGame    ActionKind = "LOAD_PERSISTED_GAME"
	KindApplyHistorySnapshot ActionKind = "APPLY_HISTORY_SNAPSHOT"
	KindApplyTacticalHistory ActionKind = "APPLY_TACTICAL_HISTORY"
)

// Action is a reducer input. Implementations are value types; the reducer
// never mutates them.
type Action interface {
	Kind() ActionKind
}

// StartPeriod begins play for the given period. Period 1 starts the match
// clock from zero; later periods continue the single continuous clock from
// the prior period's end boundary.
type StartPeriod struct {
	NextPeriod            int
	PeriodDurationMinutes int
	SubIntervalMinutes    int
	Now                   time.Time
}

func (StartPeriod) Kind() ActionKind { return KindStartPeriod }

// EndPeriodOrGame freezes the clock at a period or game boundary.
// FinalTime, when set, becomes the authoritative elapsed value.
type EndPeriodOrGame struct {
	NewStatus models.GameStatus
	FinalTime *float64
}

func (EndPeriodOrGame) Kind() ActionKind { return KindEndPeriodOrGame }

// PauseTimer stops the running clock. PreciseTime comes from the precision
// clock's fractional reading and is always preferred over the last whole-
// second tick.
type PauseTimer struct {
	PreciseTime *float64
}

func (PauseTimer) Kind() ActionKind { return KindPauseTimer }

// ResumeTimer restarts a paused clock within an in-progress period.
type ResumeTimer struct {
	Now time.Time
}

func (ResumeTimer) Kind() ActionKind { return KindResumeTimer }

// TimerTick carries one whole-second clock reading. Ignored while the
// timer is not running, which absorbs stale ticks queued across a pause.
type TimerTick struct {
	Elapsed float64
}

func (TimerTick) Kind() ActionKind { return KindTimerTick }

// RestoreTimerState applies a drift-corrected elapsed value computed after
// the host returns from background. It is a restoration: never recorded in
// undo history, but still routed to auto-save.
type RestoreTimerState struct {
	Elapsed float64
}

func (RestoreTimerState) Kind() ActionKind { return KindRestoreTimerState }

// ConfirmSubstitution acknowledges the current substitution interval and
// re-anchors the next due time to the present elapsed value.
type ConfirmSubstitution struct{}

func (ConfirmSubstitution) Kind() ActionKind { return KindConfirmSubstitution }

// SetSubInterval changes the substitution cadence, minutes clamped to >= 1.
type SetSubInterval struct {
	Minutes int
}

func (SetSubInterval) Kind() ActionKind { return KindSetSubInterval }

// AddGameEvent appends an event to the log and applies its score effect in
// the same transition.
type AddGameEvent struct {
	Event models.GameEvent
}

func (AddGameEvent) Kind() ActionKind { return KindAddGameEvent }

// UpdateGameEvent replaces the event with the matching ID. A type change
// re-applies the score contribution.
type UpdateGameEvent struct {
	Event models.GameEvent
}

func (UpdateGameEvent) Kind() ActionKind { return KindUpdateGameEvent }

// DeleteGameEvent removes an event and reverses its score effect in one
// atomic transition so no snapshot can observe the event gone but the
// score uncorrected.
type DeleteGameEvent struct {
	EventID string
}

func (DeleteGameEvent) Kind() ActionKind { return KindDeleteGameEvent }

// AdjustScore applies the score effect of an event type without touching
// the event log. Delete reverses the effect.
type AdjustScore struct {
	EventType models.GameEventType
	Delete    bool
}

func (AdjustScore) Kind() ActionKind { return KindAdjustScore }

type SetTeamName struct{ Name string }

func (SetTeamName) Kind() ActionKind { return KindSetTeamName }

type SetOpponentName struct{ Name string }

func (SetOpponentName) Kind() ActionKind { return KindSetOpponentName }

type SetGameDetails struct {
	Date     string
	Time     string
	Location string
}

func (SetGameDetails) Kind() ActionKind { return KindSetGameDetails }

type SetGameNotes struct{ Notes string }

func (SetGameNotes) Kind() ActionKind { return KindSetGameNotes }

type SetAgeGroup struct{ AgeGroup string }

func (SetAgeGroup) Kind() ActionKind { return KindSetAgeGroup }

// SetSeasonID links the game to a season. A non-empty value clears any
// tournament link; clearing the season leaves the tournament untouched.
type SetSeasonID struct{ ID string }

func (SetSeasonID) Kind() ActionKind { return KindSetSeasonID }

// SetTournamentID mirrors SetSeasonID with the roles reversed.
type SetTournamentID struct{ ID string }

func (SetTournamentID) Kind() ActionKind { return KindSetTournamentID }

// SetHomeOrAway flips which score slot is the coached team. Scores are
// slots for "home" and "away", so changing orientation swaps them.
type SetHomeOrAway struct{ Value models.HomeOrAway }

func (SetHomeOrAway) Kind() ActionKind { return KindSetHomeOrAway }

type SetNumPeriods struct{ NumPeriods int }

func (SetNumPeriods) Kind() ActionKind { return KindSetNumPeriods }

type SetPeriodDuration struct{ Minutes int }

func (SetPeriodDuration) Kind() ActionKind { return KindSetPeriodDuration }

type SetSelectedPlayers struct{ PlayerIDs []string }

func (SetSelectedPlayers) Kind() ActionKind { return KindSetSelectedPlayers }

type SetSelectedPersonnel struct{ PersonnelIDs []string }

func (SetSelectedPersonnel) Kind() ActionKind { return KindSetSelectedPersonnel }

type PlaceTacticalDisc struct{ Disc models.TacticalDisc }

func (PlaceTacticalDisc) Kind() ActionKind { return KindPlaceTacticalDisc }

type MoveTacticalDisc struct {
	DiscID string
	Pos    models.Point
}

func (MoveTacticalDisc) Kind() ActionKind { return KindMoveTacticalDisc }

type RemoveTacticalDisc struct{ DiscID string }

func (RemoveTacticalDisc) Kind() ActionKind { return KindRemoveTacticalDisc }

type AddDrawing struct{ Stroke []models.Point }

func (AddDrawing) Kind() ActionKind { return KindAddDrawing }

type ClearDrawings struct{}

func (ClearDrawings) Kind() ActionKind { return KindClearDrawings }

// ResetGame clears match data (score, events, clock, tactics) while
// keeping the game identity, metadata and roster selections.
type ResetGame struct{}

func (ResetGame) Kind() ActionKind { return KindResetGame }

// LoadPersistedGame rehydrates a session from storage, defaulting every
// optional field. A restoration.
type LoadPersistedGame struct {
	Data *models.GameSession
}

func (LoadPersistedGame) Kind() ActionKind { return KindLoadPersistedGame }

// ApplyHistorySnapshot restores an undo/redo history slice. A restoration.
type ApplyHistorySnapshot struct {
	Slice HistorySlice
}

func (ApplyHistorySnapshot) Kind() ActionKind { return KindApplyHistorySnapshot }

// ApplyTacticalHistory restores a tactics-board undo/redo snapshot.
// A restoration.
type ApplyTacticalHistory struct {
	State models.TacticalState
}

func (ApplyTacticalHistory) Kind() ActionKind { return KindApplyTacticalHistory }
