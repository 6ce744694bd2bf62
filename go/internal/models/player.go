package models

// Player is one member of the coached team's roster. Selection for a
// given match is recorded on the session as SelectedPlayerIDs; the
// roster itself outlives any single game.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname,omitempty"`
	JerseyNumber int    `json:"jersey_number,omitempty"`
	Notes        string `json:"notes,omitempty"`
	IsGoalie     bool   `json:"is_goalie,omitempty"`
	// ReceivedFairPlayCard survives across matches; the per-match card
	// events live in the session event log.
	ReceivedFairPlayCard bool `json:"received_fair_play_card,omitempty"`
}

// Personnel is a non-playing team member (coach, assistant, physio).
type Personnel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Roster is the persisted team sheet.
type Roster struct {
	Players   []Player    `json:"players"`
	Personnel []Personnel `json:"personnel"`
}
