package session

import (
	"testing"
	"time"

	"github.com/touchlineapp/touchline/go/internal/models"
)

func newTestSession() *models.GameSession {
	return models.NewGameSession("game-1")
}

func startedSession(t *testing.T) *models.GameSession {
	t.Helper()
	s := Reduce(newTestSession(), StartPeriod{
		NextPeriod:            1,
		PeriodDurationMinutes: 15,
		SubIntervalMinutes:    5,
		Now:                   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})
	if s.GameStatus != models.GameStatusInProgress {
		t.Fatalf("start period: status = %s, want %s", s.GameStatus, models.GameStatusInProgress)
	}
	return s
}

func TestScoreNeverNegative(t *testing.T) {
	s := newTestSession()
	actions := []Action{
		AdjustScore{EventType: models.EventGoal, Delete: true},
		AdjustScore{EventType: models.EventOpponentGoal, Delete: true},
		AdjustScore{EventType: models.EventGoal},
		AdjustScore{EventType: models.EventGoal, Delete: true},
		AdjustScore{EventType: models.EventGoal, Delete: true},
		AdjustScore{EventType: models.EventOpponentGoal},
		AdjustScore{EventType: models.EventOpponentGoal, Delete: true},
		AdjustScore{EventType: models.EventOpponentGoal, Delete: true},
	}
	for i, a := range actions {
		s = Reduce(s, a)
		if s.HomeScore < 0 || s.AwayScore < 0 {
			t.Fatalf("step %d: score went negative: home=%d away=%d", i, s.HomeScore, s.AwayScore)
		}
	}
	if s.HomeScore != 0 || s.AwayScore != 0 {
		t.Fatalf("final score = %d-%d, want 0-0", s.HomeScore, s.AwayScore)
	}
}

func TestSetHomeOrAwaySwapAndIdempotence(t *testing.T) {
	s := newTestSession()
	s.HomeScore = 3
	s.AwayScore = 1

	same := Reduce(s, SetHomeOrAway{Value: models.TeamHome})
	if same != s {
		t.Fatal("setting current orientation must return the identical state reference")
	}

	flipped := Reduce(s, SetHomeOrAway{Value: models.TeamAway})
	if flipped == s {
		t.Fatal("orientation change must produce a new state")
	}
	if flipped.HomeOrAway != models.TeamAway {
		t.Fatalf("orientation = %s, want away", flipped.HomeOrAway)
	}
	if flipped.HomeScore != 1 || flipped.AwayScore != 3 {
		t.Fatalf("scores after swap = %d-%d, want 1-3", flipped.HomeScore, flipped.AwayScore)
	}

	back := Reduce(flipped, SetHomeOrAway{Value: models.TeamHome})
	if back.HomeScore != 3 || back.AwayScore != 1 {
		t.Fatalf("double swap = %d-%d, want original 3-1", back.HomeScore, back.AwayScore)
	}
}

func TestSeasonTournamentMutualExclusivity(t *testing.T) {
	tests := []struct {
		name           string
		action         Action
		prep           func(*models.GameSession)
		wantSeason     string
		wantTournament string
	}{
		{
			name:           "setting season clears tournament",
			prep:           func(s *models.GameSession) { s.TournamentID = "t-1" },
			action:         SetSeasonID{ID: "s-1"},
			wantSeason:     "s-1",
			wantTournament: "",
		},
		{
			name:           "setting tournament clears season",
			prep:           func(s *models.GameSession) { s.SeasonID = "s-1" },
			action:         SetTournamentID{ID: "t-1"},
			wantSeason:     "",
			wantTournament: "t-1",
		},
		{
			name:           "clearing season keeps tournament",
			prep:           func(s *models.GameSession) { s.SeasonID = "s-1"; s.TournamentID = "t-1" },
			action:         SetSeasonID{ID: ""},
			wantSeason:     "",
			wantTournament: "t-1",
		},
		{
			name:           "clearing tournament keeps season",
			prep:           func(s *models.GameSession) { s.SeasonID = "s-1"; s.TournamentID = "t-1" },
			action:         SetTournamentID{ID: ""},
			wantSeason:     "s-1",
			wantTournament: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession()
			tc.prep(s)
			got := Reduce(s, tc.action)
			if got.SeasonID != tc.wantSeason {
				t.Errorf("season = %q, want %q", got.SeasonID, tc.wantSeason)
			}
			if got.TournamentID != tc.wantTournament {
				t.Errorf("tournament = %q, want %q", got.TournamentID, tc.wantTournament)
			}
		})
	}
}

func TestStartPeriodTwoContinuesClock(t *testing.T) {
	s := startedSession(t)
	s = Reduce(s, ConfirmSubstitution{})
	intervals := len(s.CompletedIntervalDurations)

	end := 900.0
	s = Reduce(s, EndPeriodOrGame{NewStatus: models.GameStatusPeriodEnd, FinalTime: &end})
	s = Reduce(s, StartPeriod{
		NextPeriod:            2,
		PeriodDurationMinutes: 15,
		SubIntervalMinutes:    5,
		Now:                   time.Date(2026, 3, 14, 10, 20, 0, 0, time.UTC),
	})

	if s.TimeElapsedSeconds != 900 {
		t.Fatalf("period 2 elapsed = %v, want exactly 900", s.TimeElapsedSeconds)
	}
	if len(s.CompletedIntervalDurations) != intervals {
		t.Fatalf("interval log length = %d, want %d (preserved across period start)", len(s.CompletedIntervalDurations), intervals)
	}
	if s.CurrentPeriod != 2 || !s.IsTimerRunning || s.StartTimestamp == nil {
		t.Fatalf("period 2 not running: period=%d running=%v start=%v", s.CurrentPeriod, s.IsTimerRunning, s.StartTimestamp)
	}
}

func TestStartPeriodOneResetsIntervalLog(t *testing.T) {
	s := startedSession(t)
	s = Reduce(s, ConfirmSubstitution{})
	s = Reduce(s, EndPeriodOrGame{NewStatus: models.GameStatusPeriodEnd})
	s = Reduce(s, StartPeriod{NextPeriod: 1, PeriodDurationMinutes: 15, SubIntervalMinutes: 5, Now: time.Now()})
	if s.TimeElapsedSeconds != 0 {
		t.Fatalf("period 1 elapsed = %v, want 0", s.TimeElapsedSeconds)
	}
	if len(s.CompletedIntervalDurations) != 0 {
		t.Fatalf("interval log length = %d, want 0", len(s.CompletedIntervalDurations))
	}
}

func TestTimerTickIgnoredWhileStopped(t *testing.T) {
	s := newTestSession()
	got := Reduce(s, TimerTick{Elapsed: 42})
	if got != s {
		t.Fatal("tick while stopped must return the identical state reference")
	}

	running := startedSession(t)
	paused := Reduce(running, PauseTimer{})
	got = Reduce(paused, TimerTick{Elapsed: 42})
	if got != paused {
		t.Fatal("stale tick after pause must return the identical state reference")
	}
}

func TestTimerTickAlertLevels(t *testing.T) {
	s := startedSession(t) // nextSubDue = 300
	tests := []struct {
		elapsed float64
		want    models.SubAlertLevel
	}{
		{10, models.SubAlertNone},
		{239, models.SubAlertNone},
		{240, models.SubAlertWarning},
		{299, models.SubAlertWarning},
		{300, models.SubAlertDue},
		{400, models.SubAlertDue},
	}
	for _, tc := range tests {
		got := Reduce(s, TimerTick{Elapsed: tc.elapsed})
		if got.SubAlertLevel != tc.want {
			t.Errorf("elapsed %v: alert = %s, want %s", tc.elapsed, got.SubAlertLevel, tc.want)
		}
	}
}

func TestConfirmSubstitutionCadence(t *testing.T) {
	s := startedSession(t)
	s.TimeElapsedSeconds = 350
	s.LastSubConfirmationTimeSeconds = 100
	prior := len(s.CompletedIntervalDurations)

	got := Reduce(s, ConfirmSubstitution{})
	if len(got.CompletedIntervalDurations) != prior+1 {
		t.Fatalf("interval log length = %d, want %d", len(got.CompletedIntervalDurations), prior+1)
	}
	head := got.CompletedIntervalDurations[0]
	if head.DurationSeconds != 250 || head.TimestampSeconds != 350 {
		t.Fatalf("interval entry = {dur:%v ts:%v}, want {dur:250 ts:350}", head.DurationSeconds, head.TimestampSeconds)
	}
	if got.LastSubConfirmationTimeSeconds != 350 {
		t.Fatalf("lastSubConfirmation = %v, want 350", got.LastSubConfirmationTimeSeconds)
	}
	if got.NextSubDueTimeSeconds != 650 {
		t.Fatalf("nextSubDue = %v, want 650 (anchored to current time)", got.NextSubDueTimeSeconds)
	}
}

func TestSetSubIntervalRealignsDueTime(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		minutes int
		wantDue float64
	}{
		{"mid interval", 350, 2, 360},
		{"exactly on boundary", 600, 5, 900},
		{"zero clamps to one minute", 30, 0, 60},
		{"fresh game", 0, 5, 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := startedSession(t)
			s.TimeElapsedSeconds = tc.elapsed
			got := Reduce(s, SetSubInterval{Minutes: tc.minutes})
			if got.NextSubDueTimeSeconds != tc.wantDue {
				t.Fatalf("nextSubDue = %v, want %v", got.NextSubDueTimeSeconds, tc.wantDue)
			}
		})
	}
}

func TestLoadRecalculatesCadenceFromPersistedAnchor(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   float64
		wantAlert models.SubAlertLevel
	}{
		{"past due", 960, models.SubAlertDue},
		{"mid interval", 720, models.SubAlertNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := models.NewGameSession("game-1")
			data.GameStatus = models.GameStatusInProgress
			data.TimeElapsedSeconds = tc.elapsed
			data.LastSubConfirmationTimeSeconds = 600
			data.SubIntervalMinutes = 5

			got := Reduce(newTestSession(), LoadPersistedGame{Data: data})
			if got.NextSubDueTimeSeconds != 900 {
				t.Fatalf("nextSubDue = %v, want 900 (from persisted confirmation anchor)", got.NextSubDueTimeSeconds)
			}
			if got.SubAlertLevel != tc.wantAlert {
				t.Fatalf("alert = %s, want %s", got.SubAlertLevel, tc.wantAlert)
			}
		})
	}
}

func TestLoadCoercesInProgressToNotStarted(t *testing.T) {
	data := models.NewGameSession("game-1")
	data.GameStatus = models.GameStatusInProgress
	data.IsTimerRunning = true
	now := time.Now()
	data.StartTimestamp = &now
	data.TimeElapsedSeconds = 444

	got := Reduce(newTestSession(), LoadPersistedGame{Data: data})
	if got.GameStatus != models.GameStatusNotStarted {
		t.Fatalf("status = %s, want notStarted", got.GameStatus)
	}
	if got.IsTimerRunning || got.StartTimestamp != nil {
		t.Fatalf("timer must not survive a load: running=%v start=%v", got.IsTimerRunning, got.StartTimestamp)
	}
	if got.TimeElapsedSeconds != 444 {
		t.Fatalf("elapsed = %v, want 444 preserved", got.TimeElapsedSeconds)
	}
}

func TestLoadRestoresPeriodEndAsIs(t *testing.T) {
	for _, status := range []models.GameStatus{models.GameStatusPeriodEnd, models.GameStatusGameEnd} {
		data := models.NewGameSession("game-1")
		data.GameStatus = status
		got := Reduce(newTestSession(), LoadPersistedGame{Data: data})
		if got.GameStatus != status {
			t.Fatalf("status = %s, want %s restored as-is", got.GameStatus, status)
		}
	}
}

func TestLoadFallbackElapsedFromPeriodMath(t *testing.T) {
	data := models.NewGameSession("game-1")
	data.GameStatus = models.GameStatusPeriodEnd
	data.CurrentPeriod = 1
	data.PeriodDurationMinutes = 15
	data.TimeElapsedSeconds = 0

	got := Reduce(newTestSession(), LoadPersistedGame{Data: data})
	if got.TimeElapsedSeconds != 900 {
		t.Fatalf("fallback elapsed = %v, want 900", got.TimeElapsedSeconds)
	}
}

func TestLoadDefaultsOptionalFields(t *testing.T) {
	got := Reduce(newTestSession(), LoadPersistedGame{Data: &models.GameSession{ID: "game-2"}})
	if got.NumPeriods != 2 {
		t.Errorf("numPeriods = %d, want default 2", got.NumPeriods)
	}
	if got.PeriodDurationMinutes != models.DefaultPeriodDurationMinutes {
		t.Errorf("periodDuration = %d, want default", got.PeriodDurationMinutes)
	}
	if got.SubIntervalMinutes != models.DefaultSubIntervalMinutes {
		t.Errorf("subInterval = %d, want default", got.SubIntervalMinutes)
	}
	if got.HomeOrAway != models.TeamHome {
		t.Errorf("orientation = %s, want home", got.HomeOrAway)
	}
	if got.GameEvents == nil || got.SelectedPlayerIDs == nil || got.CompletedIntervalDurations == nil {
		t.Error("slices must be defaulted, not nil")
	}
}

func TestDeleteGameEventCorrectsScoreAtomically(t *testing.T) {
	s := startedSession(t)
	s = Reduce(s, AddGameEvent{Event: models.GameEvent{ID: "e1", Type: models.EventGoal, TimeSeconds: 100, ScorerID: "p1"}})
	s = Reduce(s, AddGameEvent{Event: models.GameEvent{ID: "e2", Type: models.EventOpponentGoal, TimeSeconds: 200}})
	if s.HomeScore != 1 || s.AwayScore != 1 {
		t.Fatalf("score after adds = %d-%d, want 1-1", s.HomeScore, s.AwayScore)
	}

	got := Reduce(s, DeleteGameEvent{EventID: "e1"})
	if len(got.GameEvents) != 1 || got.GameEvents[0].ID != "e2" {
		t.Fatalf("events after delete = %v", got.GameEvents)
	}
	if got.HomeScore != 0 || got.AwayScore != 1 {
		t.Fatalf("score after delete = %d-%d, want 0-1", got.HomeScore, got.AwayScore)
	}

	missing := Reduce(got, DeleteGameEvent{EventID: "nope"})
	if missing != got {
		t.Fatal("deleting an unknown event must return the identical state reference")
	}
}

func TestUpdateGameEventTypeChangeReappliesScore(t *testing.T) {
	s := startedSession(t)
	s = Reduce(s, AddGameEvent{Event: models.GameEvent{ID: "e1", Type: models.EventGoal, TimeSeconds: 100}})
	got := Reduce(s, UpdateGameEvent{Event: models.GameEvent{ID: "e1", Type: models.EventOpponentGoal, TimeSeconds: 100}})
	if got.HomeScore != 0 || got.AwayScore != 1 {
		t.Fatalf("score after type change = %d-%d, want 0-1", got.HomeScore, got.AwayScore)
	}
}

func TestPauseTimerPrefersPreciseTime(t *testing.T) {
	s := startedSession(t)
	precise := 12.68
	got := Reduce(s, PauseTimer{PreciseTime: &precise})
	if got.TimeElapsedSeconds != 12.68 {
		t.Fatalf("elapsed = %v, want precise 12.68", got.TimeElapsedSeconds)
	}
	if got.IsTimerRunning || got.StartTimestamp != nil {
		t.Fatal("pause must stop the timer and clear the start instant")
	}

	again := Reduce(got, PauseTimer{PreciseTime: &precise})
	if again != got {
		t.Fatal("pausing a stopped timer must return the identical state reference")
	}
}

func TestEndPeriodOnlyFromInProgress(t *testing.T) {
	s := newTestSession()
	got := Reduce(s, EndPeriodOrGame{NewStatus: models.GameStatusPeriodEnd})
	if got != s {
		t.Fatal("ending a not-started game must be a no-op")
	}
}

func TestUnknownActionIsNoOp(t *testing.T) {
	s := newTestSession()
	if got := Reduce(s, fakeAction{}); got != s {
		t.Fatal("unknown action must return the identical state reference")
	}
}

type fakeAction struct{}

func (fakeAction) Kind() ActionKind { return ActionKind("BOGUS") }

func TestResetGameKeepsIdentityAndRoster(t *testing.T) {
	s := startedSession(t)
	s.TeamName = "Falcons"
	s.SelectedPlayerIDs = []string{"p1", "p2"}
	s = Reduce(s, AddGameEvent{Event: models.GameEvent{ID: "e1", Type: models.EventGoal}})

	got := Reduce(s, ResetGame{})
	if got.ID != s.ID || got.TeamName != "Falcons" {
		t.Fatalf("identity lost on reset: id=%q team=%q", got.ID, got.TeamName)
	}
	if len(got.SelectedPlayerIDs) != 2 {
		t.Fatalf("roster selection lost on reset: %v", got.SelectedPlayerIDs)
	}
	if got.HomeScore != 0 || len(got.GameEvents) != 0 || got.TimeElapsedSeconds != 0 {
		t.Fatal("match data must be cleared on reset")
	}
	if got.GameStatus != models.GameStatusNotStarted {
		t.Fatalf("status = %s, want notStarted", got.GameStatus)
	}
}

func TestTacticalDiscClampAndMove(t *testing.T) {
	s := newTestSession()
	s = Reduce(s, PlaceTacticalDisc{Disc: models.TacticalDisc{ID: "d1", Kind: models.DiscPlayer, Pos: models.Point{X: 1.7, Y: -0.2}}})
	if p := s.Tactical.Discs[0].Pos; p.X != 1 || p.Y != 0 {
		t.Fatalf("placed disc pos = %+v, want clamped to board", p)
	}
	s = Reduce(s, MoveTacticalDisc{DiscID: "d1", Pos: models.Point{X: 0.5, Y: 0.5}})
	if p := s.Tactical.Discs[0].Pos; p.X != 0.5 || p.Y != 0.5 {
		t.Fatalf("moved disc pos = %+v", p)
	}
	if got := Reduce(s, MoveTacticalDisc{DiscID: "ghost", Pos: models.Point{}}); got != s {
		t.Fatal("moving an unknown disc must be a no-op")
	}
}

func TestReduceNeverMutatesInput(t *testing.T) {
	s := startedSession(t)
	s.HomeScore = 2
	before := *s.Clone()

	_ = Reduce(s, AddGameEvent{Event: models.GameEvent{ID: "e9", Type: models.EventGoal}})
	_ = Reduce(s, ConfirmSubstitution{})
	_ = Reduce(s, SetHomeOrAway{Value: models.TeamAway})

	if s.HomeScore != before.HomeScore || s.AwayScore != before.AwayScore {
		t.Fatal("input state score mutated")
	}
	if len(s.GameEvents) != len(before.GameEvents) {
		t.Fatal("input state event log mutated")
	}
	if len(s.CompletedIntervalDurations) != len(before.CompletedIntervalDurations) {
		t.Fatal("input state interval log mutated")
	}
}
