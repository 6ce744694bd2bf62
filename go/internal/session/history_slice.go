package session

import "github.com/touchlineapp/touchline/go/internal/models"

// HistorySlice is the subset of session fields recorded per undo/redo
// entry. Fast-changing clock fields (elapsed, running flag, start instant,
// alert level) are excluded so timer churn never reads as a user edit;
// the substitution anchor and interval log are kept because confirming a
// substitution is itself a user action.
type HistorySlice struct {
	TeamName     string `json:"team_name"`
	OpponentName string `json:"opponent_name"`
	GameDate     string `json:"game_date"`
	GameTime     string `json:"game_time,omitempty"`
	GameLocation string `json:"game_location,omitempty"`
	GameNotes    string `json:"game_notes,omitempty"`
	AgeGroup     string `json:"age_group,omitempty"`
	SeasonID     string `json:"season_id,omitempty"`
	TournamentID string `json:"tournament_id,omitempty"`

	HomeScore  int               `json:"home_score"`
	AwayScore  int               `json:"away_score"`
	HomeOrAway models.HomeOrAway `json:"home_or_away"`

	NumPeriods            int               `json:"num_periods"`
	PeriodDurationMinutes int               `json:"period_duration_minutes"`
	CurrentPeriod         int               `json:"current_period"`
	GameStatus            models.GameStatus `json:"game_status"`

	SelectedPlayerIDs    []string `json:"selected_player_ids"`
	SelectedPersonnelIDs []string `json:"selected_personnel_ids"`

	GameEvents []models.GameEvent `json:"game_events"`

	SubIntervalMinutes             int                  `json:"sub_interval_minutes"`
	LastSubConfirmationTimeSeconds float64              `json:"last_sub_confirmation_time_seconds"`
	CompletedIntervalDurations     []models.IntervalLog `json:"completed_interval_durations"`
}

// SliceOf extracts the history slice from a session.
func SliceOf(s *models.GameSession) HistorySlice {
	return HistorySlice{
		TeamName:     s.TeamName,
		OpponentName: s.OpponentName,
		GameDate:     s.GameDate,
		GameTime:     s.GameTime,
		GameLocation: s.GameLocation,
		GameNotes:    s.GameNotes,
		AgeGroup:     s.AgeGroup,
		SeasonID:     s.SeasonID,
		TournamentID: s.TournamentID,

		HomeScore:  s.HomeScore,
		AwayScore:  s.AwayScore,
		HomeOrAway: s.HomeOrAway,

		NumPeriods:            s.NumPeriods,
		PeriodDurationMinutes: s.PeriodDurationMinutes,
		CurrentPeriod:         s.CurrentPeriod,
		GameStatus:            s.GameStatus,

		SelectedPlayerIDs:    append([]string(nil), s.SelectedPlayerIDs...),
		SelectedPersonnelIDs: append([]string(nil), s.SelectedPersonnelIDs...),

		GameEvents: append([]models.GameEvent(nil), s.GameEvents...),

		SubIntervalMinutes:             s.SubIntervalMinutes,
		LastSubConfirmationTimeSeconds: s.LastSubConfirmationTimeSeconds,
		CompletedIntervalDurations:     append([]models.IntervalLog(nil), s.CompletedIntervalDurations...),
	}
}
