package models

// TimerSnapshot is the record written synchronously when the host page
// goes to background, and read back on foreground to repair any clock
// lag accumulated while timers were suspended.
type TimerSnapshot struct {
	GameID             string  `json:"game_id"`
	ElapsedSeconds     float64 `json:"elapsed_seconds"`
	WallClockTimestamp int64   `json:"wall_clock_timestamp"` // unix milliseconds
	WasRunning         bool    `json:"was_running"`
}
