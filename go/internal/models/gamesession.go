package models

import (
	"time"
)

// GameStatus defines the lifecycle status of a game session.
type GameStatus string

const (
	GameStatusNotStarted GameStatus = "notStarted"
	GameStatusInProgress GameStatus = "inProgress"
	GameStatusPeriodEnd  GameStatus = "periodEnd"
	GameStatusGameEnd    GameStatus = "gameEnd"
)

// HomeOrAway defines which score slot belongs to the coached team.
type HomeOrAway string

const (
	TeamHome HomeOrAway = "home"
	TeamAway HomeOrAway = "away"
)

// SubAlertLevel defines how urgently a substitution check is owed.
type SubAlertLevel string

const (
	SubAlertNone    SubAlertLevel = "none"
	SubAlertWarning SubAlertLevel = "warning"
	SubAlertDue     SubAlertLevel = "due"
)

// GameEventType defines the kind of a logged game event.
type GameEventType string

const (
	EventGoal         GameEventType = "goal"
	EventOpponentGoal GameEventType = "opponentGoal"
	EventSubstitution GameEventType = "substitution"
	EventPeriodEnd    GameEventType = "periodEnd"
	EventGameEnd      GameEventType = "gameEnd"
	EventFairPlayCard GameEventType = "fairPlayCard"
)

// GameEvent is one entry in the match event log, timestamped in
// match-clock seconds.
type GameEvent struct {
	ID          string        `json:"id"`
	Type        GameEventType `json:"type"`
	TimeSeconds float64       `json:"time_seconds"`
	ScorerID    string        `json:"scorer_id,omitempty"`
	AssisterID  string        `json:"assister_id,omitempty"`
}

// IntervalLog records one completed substitution interval. The newest
// record is kept at the front of the slice.
type IntervalLog struct {
	Period           int     `json:"period"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
}

// GameSession is the single source of truth for one match in progress.
// It is mutated exclusively through the session reducer; all fields are
// value-copied on every transition.
type GameSession struct {
	ID string `json:"id"`

	// Metadata
	TeamName     string `json:"team_name"`
	OpponentName string `json:"opponent_name"`
	GameDate     string `json:"game_date"`
	GameTime     string `json:"game_time,omitempty"`
	GameLocation string `json:"game_location,omitempty"`
	GameNotes    string `json:"game_notes,omitempty"`
	AgeGroup     string `json:"age_group,omitempty"`
	SeasonID     string `json:"season_id,omitempty"`
	TournamentID string `json:"tournament_id,omitempty"`

	// Score
	HomeScore  int        `json:"home_score"`
	AwayScore  int        `json:"away_score"`
	HomeOrAway HomeOrAway `json:"home_or_away"`

	// Structure
	NumPeriods            int        `json:"num_periods"`
	PeriodDurationMinutes int        `json:"period_duration_minutes"`
	CurrentPeriod         int        `json:"current_period"`
	GameStatus            GameStatus `json:"game_status"`

	// Roster references
	SelectedPlayerIDs    []string `json:"selected_player_ids"`
	SelectedPersonnelIDs []string `json:"selected_personnel_ids"`

	// Event log
	GameEvents []GameEvent `json:"game_events"`

	// Timer / substitution cadence
	TimeElapsedSeconds             float64       `json:"time_elapsed_seconds"`
	StartTimestamp                 *time.Time    `json:"start_timestamp,omitempty"`
	IsTimerRunning                 bool          `json:"is_timer_running"`
	NextSubDueTimeSeconds          float64       `json:"next_sub_due_time_seconds"`
	SubAlertLevel                  SubAlertLevel `json:"sub_alert_level"`
	LastSubConfirmationTimeSeconds float64       `json:"last_sub_confirmation_time_seconds"`
	SubIntervalMinutes             int           `json:"sub_interval_minutes"`
	CompletedIntervalDurations     []IntervalLog `json:"completed_interval_durations"`

	// Tactics board
	Tactical TacticalState `json:"tactical"`
}

// DefaultPeriodDurationMinutes is applied when a session is created or
// rehydrated without an explicit period length.
const DefaultPeriodDurationMinutes = 10

// DefaultSubIntervalMinutes is the substitution cadence applied until the
// coach picks one.
const DefaultSubIntervalMinutes = 5

// NewGameSession returns a fresh session in the notStarted state.
func NewGameSession(id string) *GameSession {
	return &GameSession{
		ID:                         id,
		HomeOrAway:                 TeamHome,
		NumPeriods:                 2,
		PeriodDurationMinutes:      DefaultPeriodDurationMinutes,
		CurrentPeriod:              1,
		GameStatus:                 GameStatusNotStarted,
		SelectedPlayerIDs:          []string{},
		SelectedPersonnelIDs:       []string{},
		GameEvents:                 []GameEvent{},
		SubIntervalMinutes:         DefaultSubIntervalMinutes,
		NextSubDueTimeSeconds:      float64(DefaultSubIntervalMinutes * 60),
		SubAlertLevel:              SubAlertNone,
		CompletedIntervalDurations: []IntervalLog{},
	}
}

// Clone returns a deep copy of the session. The reducer clones before
// every mutation so callers can treat returned states as immutable.
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.StartTimestamp != nil {
		t := *s.StartTimestamp
		out.StartTimestamp = &t
	}
	out.SelectedPlayerIDs = append([]string(nil), s.SelectedPlayerIDs...)
	out.SelectedPersonnelIDs = append([]string(nil), s.SelectedPersonnelIDs...)
	out.GameEvents = append([]GameEvent(nil), s.GameEvents...)
	out.CompletedIntervalDurations = append([]IntervalLog(nil), s.CompletedIntervalDurations...)
	out.Tactical = s.Tactical.Clone()
	return &out
}

// PeriodEndSeconds returns the match-clock second at which the given
// period ends. Periods run back-to-back on one continuous clock.
func (s *GameSession) PeriodEndSeconds(period int) float64 {
	return float64(period * s.PeriodDurationMinutes * 60)
}
