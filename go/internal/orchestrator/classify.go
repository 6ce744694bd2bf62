package orchestrator

import "github.com/touchlineapp/touchline/go/internal/session"

// class describes an action kind's side effects: whether it lands in the
// match or tactics undo log, and whether the match clock must re-sync to
// the resulting state. Restorations replay previously recorded states,
// so re-recording them would corrupt the log they came from; being a
// restoration is a property of the kind itself, never of dispatch
// timing.
type class struct {
	history   bool
	tactics   bool
	clockSync bool
}

var classes = map[session.ActionKind]class{
	// Match lifecycle moves period and status, both history-recorded,
	// and rebases the clock.
	session.KindStartPeriod:     {history: true, clockSync: true},
	session.KindEndPeriodOrGame: {history: true, clockSync: true},

	// Transient clock traffic. Pause and resume pin the clock to the
	// session's elapsed value but touch no history-visible field.
	session.KindPauseTimer:  {clockSync: true},
	session.KindResumeTimer: {clockSync: true},
	session.KindTimerTick:   {},

	// User edits recorded in match history.
	session.KindConfirmSubstitution:  {history: true},
	session.KindSetSubInterval:       {history: true},
	session.KindAddGameEvent:         {history: true},
	session.KindUpdateGameEvent:      {history: true},
	session.KindDeleteGameEvent:      {history: true},
	session.KindAdjustScore:          {history: true},
	session.KindSetTeamName:          {history: true},
	session.KindSetOpponentName:      {history: true},
	session.KindSetGameDetails:       {history: true},
	session.KindSetGameNotes:         {history: true},
	session.KindSetAgeGroup:          {history: true},
	session.KindSetSeasonID:          {history: true},
	session.KindSetTournamentID:      {history: true},
	session.KindSetHomeOrAway:        {history: true},
	session.KindSetNumPeriods:        {history: true},
	session.KindSetPeriodDuration:    {history: true},
	session.KindSetSelectedPlayers:   {history: true},
	session.KindSetSelectedPersonnel: {history: true},

	// Tactics board edits live in their own log.
	session.KindPlaceTacticalDisc:  {tactics: true},
	session.KindMoveTacticalDisc:   {tactics: true},
	session.KindRemoveTacticalDisc: {tactics: true},
	session.KindAddDrawing:         {tactics: true},
	session.KindClearDrawings:      {tactics: true},

	// Reset wipes match data and the board in one step.
	session.KindResetGame: {history: true, tactics: true, clockSync: true},

	// Restorations: applied to state and auto-saved, never re-recorded.
	session.KindRestoreTimerState:    {clockSync: true},
	session.KindLoadPersistedGame:    {clockSync: true},
	session.KindApplyHistorySnapshot: {},
	session.KindApplyTacticalHistory: {},
}
