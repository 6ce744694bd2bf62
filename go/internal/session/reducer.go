package session

import (
	"math"
	"strings"

	"github.com/touchlineapp/touchline/go/internal/models"
)

// Reduce is the pure transition function over GameSession. It never
// mutates the input and never fails: invalid input is clamped or
// defaulted, unknown actions fall through to the input state. A logical
// no-op returns the identical pointer, which callers use as a cheap
// "did anything change" signal.
func Reduce(s *models.GameSession, a Action) *models.GameSession {
	if s == nil || a == nil {
		return s
	}

	switch act := a.(type) {
	case StartPeriod:
		return reduceStartPeriod(s, act)
	case EndPeriodOrGame:
		return reduceEndPeriodOrGame(s, act)
	case PauseTimer:
		return reducePauseTimer(s, act)
	case ResumeTimer:
		return reduceResumeTimer(s, act)
	case TimerTick:
		return reduceTimerTick(s, act)
	case RestoreTimerState:
		return reduceRestoreTimerState(s, act)
	case ConfirmSubstitution:
		return reduceConfirmSubstitution(s)
	case SetSubInterval:
		return reduceSetSubInterval(s, act)
	case AddGameEvent:
		return reduceAddGameEvent(s, act)
	case UpdateGameEvent:
		return reduceUpdateGameEvent(s, act)
	case DeleteGameEvent:
		return reduceDeleteGameEvent(s, act)
	case AdjustScore:
		next := s.Clone()
		applyScoreEffect(next, act.EventType, act.Delete)
		return next
	case SetTeamName:
		name := strings.TrimSpace(act.Name)
		if name == "" || name == s.TeamName {
			return s
		}
		next := s.Clone()
		next.TeamName = name
		return next
	case SetOpponentName:
		name := strings.TrimSpace(act.Name)
		if name == s.OpponentName {
			return s
		}
		next := s.Clone()
		next.OpponentName = name
		return next
	case SetGameDetails:
		if act.Date == s.GameDate && act.Time == s.GameTime && act.Location == s.GameLocation {
			return s
		}
		next := s.Clone()
		next.GameDate = act.Date
		next.GameTime = act.Time
		next.GameLocation = act.Location
		return next
	case SetGameNotes:
		if act.Notes == s.GameNotes {
			return s
		}
		next := s.Clone()
		next.GameNotes = act.Notes
		return next
	case SetAgeGroup:
		if act.AgeGroup == s.AgeGroup {
			return s
		}
		next := s.Clone()
		next.AgeGroup = act.AgeGroup
		return next
	case SetSeasonID:
		return reduceSetSeasonID(s, act)
	case SetTournamentID:
		return reduceSetTournamentID(s, act)
	case SetHomeOrAway:
		return reduceSetHomeOrAway(s, act)
	case SetNumPeriods:
		return reduceSetNumPeriods(s, act)
	case SetPeriodDuration:
		minutes := act.Minutes
		if minutes < 1 {
			minutes = 1
		}
		if minutes == s.PeriodDurationMinutes {
			return s
		}
		next := s.Clone()
		next.PeriodDurationMinutes = minutes
		return next
	case SetSelectedPlayers:
		next := s.Clone()
		next.SelectedPlayerIDs = dedupe(act.PlayerIDs)
		return next
	case SetSelectedPersonnel:
		next := s.Clone()
		next.SelectedPersonnelIDs = append([]string{}, act.PersonnelIDs...)
		return next
	case PlaceTacticalDisc:
		next := s.Clone()
		disc := act.Disc
		disc.Pos = clampPoint(disc.Pos)
		next.Tactical.Discs = append(next.Tactical.Discs, disc)
		return next
	case MoveTacticalDisc:
		return reduceMoveTacticalDisc(s, act)
	case RemoveTacticalDisc:
		return reduceRemoveTacticalDisc(s, act)
	case AddDrawing:
		if len(act.Stroke) == 0 {
			return s
		}
		next := s.Clone()
		next.Tactical.Drawings = append(next.Tactical.Drawings, append([]models.Point(nil), act.Stroke...))
		return next
	case ClearDrawings:
		if len(s.Tactical.Drawings) == 0 {
			return s
		}
		next := s.Clone()
		next.Tactical.Drawings = nil
		return next
	case ResetGame:
		return reduceResetGame(s)
	case LoadPersistedGame:
		return reduceLoadPersistedGame(s, act)
	case ApplyHistorySnapshot:
		return reduceApplyHistorySnapshot(s, act)
	case ApplyTacticalHistory:
		next := s.Clone()
		next.Tactical = act.State.Clone()
		return next
	default:
		// Unknown actions degrade to a no-op; the orchestrator logs them.
		return s
	}
}

func reduceStartPeriod(s *models.GameSession, act StartPeriod) *models.GameSession {
	if s.GameStatus == models.GameStatusInProgress || s.GameStatus == models.GameStatusGameEnd {
		return s
	}

	nextPeriod := act.NextPeriod
	if nextPeriod < 1 {
		nextPeriod = 1
	}
	duration := act.PeriodDurationMinutes
	if duration < 1 {
		duration = models.DefaultPeriodDurationMinutes
	}
	interval := act.SubIntervalMinutes
	if interval < 1 {
		interval = 1
	}

	next := s.Clone()
	next.GameStatus = models.GameStatusInProgress
	next.IsTimerRunning = true
	now := act.Now
	next.StartTimestamp = &now
	next.CurrentPeriod = nextPeriod
	next.PeriodDurationMinutes = duration
	next.SubIntervalMinutes = interval

	if nextPeriod == 1 {
		next.TimeElapsedSeconds = 0
		next.CompletedIntervalDurations = []models.IntervalLog{}
	} else {
		// The clock continues from where the prior period ended.
		next.TimeElapsedSeconds = float64((nextPeriod - 1) * duration * 60)
	}
	next.LastSubConfirmationTimeSeconds = next.TimeElapsedSeconds
	next.NextSubDueTimeSeconds = next.TimeElapsedSeconds + float64(interval*60)
	next.SubAlertLevel = models.SubAlertNone
	return next
}

func reduceEndPeriodOrGame(s *models.GameSession, act EndPeriodOrGame) *models.GameSession {
	if s.GameStatus != models.GameStatusInProgress {
		return s
	}
	if act.NewStatus != models.GameStatusPeriodEnd && act.NewStatus != models.GameStatusGameEnd {
		return s
	}

	next := s.Clone()
	next.GameStatus = act.NewStatus
	next.IsTimerRunning = false
	next.StartTimestamp = nil
	if act.FinalTime != nil {
		next.TimeElapsedSeconds = *act.FinalTime
	}
	next.SubAlertLevel = alertFor(next.TimeElapsedSeconds, next.NextSubDueTimeSeconds)
	return next
}

func reducePauseTimer(s *models.GameSession, act PauseTimer) *models.GameSession {
	if !s.IsTimerRunning || s.StartTimestamp == nil {
		return s
	}
	next := s.Clone()
	// Precise fractional time from the clock is preferred; without it the
	// last whole-second tick stands, which is at most one second stale.
	if act.PreciseTime != nil && *act.PreciseTime >= 0 {
		next.TimeElapsedSeconds = *act.PreciseTime
	}
	next.IsTimerRunning = false
	next.StartTimestamp = nil
	return next
}

func reduceResumeTimer(s *models.GameSession, act ResumeTimer) *models.GameSession {
	if s.IsTimerRunning || s.GameStatus != models.GameStatusInProgress {
		return s
	}
	next := s.Clone()
	next.IsTimerRunning = true
	now := act.Now
	next.StartTimestamp = &now
	return next
}

func reduceTimerTick(s *models.GameSession, act TimerTick) *models.GameSession {
	// A stale tick queued across a pause must not win.
	if !s.IsTimerRunning {
		return s
	}
	if act.Elapsed == s.TimeElapsedSeconds {
		return s
	}
	next := s.Clone()
	next.TimeElapsedSeconds = act.Elapsed
	next.SubAlertLevel = alertFor(act.Elapsed, s.NextSubDueTimeSeconds)
	return next
}

func reduceRestoreTimerState(s *models.GameSession, act RestoreTimerState) *models.GameSession {
	elapsed := act.Elapsed
	if elapsed < 0 {
		elapsed = 0
	}
	next := s.Clone()
	next.TimeElapsedSeconds = elapsed
	next.SubAlertLevel = alertFor(elapsed, s.NextSubDueTimeSeconds)
	return next
}

func reduceConfirmSubstitution(s *models.GameSession) *models.GameSession {
	next := s.Clone()
	entry := models.IntervalLog{
		Period:           s.CurrentPeriod,
		DurationSeconds:  s.TimeElapsedSeconds - s.LastSubConfirmationTimeSeconds,
		TimestampSeconds: s.TimeElapsedSeconds,
	}
	next.CompletedIntervalDurations = append([]models.IntervalLog{entry}, s.CompletedIntervalDurations...)
	next.LastSubConfirmationTimeSeconds = s.TimeElapsedSeconds
	// Anchor the next due time to now, not the old target, so a late
	// confirmation does not compound drift.
	next.NextSubDueTimeSeconds = s.TimeElapsedSeconds + float64(s.SubIntervalMinutes*60)
	next.SubAlertLevel = alertFor(next.TimeElapsedSeconds, next.NextSubDueTimeSeconds)
	return next
}

func reduceSetSubInterval(s *models.GameSession, act SetSubInterval) *models.GameSession {
	minutes := act.Minutes
	if minutes < 1 {
		minutes = 1
	}
	next := s.Clone()
	next.SubIntervalMinutes = minutes
	// Next due becomes the smallest multiple of the new interval strictly
	// past the current elapsed time.
	intervalSecs := float64(minutes * 60)
	next.NextSubDueTimeSeconds = (math.Floor(s.TimeElapsedSeconds/intervalSecs) + 1) * intervalSecs
	next.SubAlertLevel = alertFor(s.TimeElapsedSeconds, next.NextSubDueTimeSeconds)
	return next
}

func reduceAddGameEvent(s *models.GameSession, act AddGameEvent) *models.GameSession {
	next := s.Clone()
	next.GameEvents = append(next.GameEvents, act.Event)
	applyScoreEffect(next, act.Event.Type, false)
	return next
}

func reduceUpdateGameEvent(s *models.GameSession, act UpdateGameEvent) *models.GameSession {
	idx := -1
	for i, ev := range s.GameEvents {
		if ev.ID == act.Event.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := s.Clone()
	old := next.GameEvents[idx]
	next.GameEvents[idx] = act.Event
	if old.Type != act.Event.Type {
		applyScoreEffect(next, old.Type, true)
		applyScoreEffect(next, act.Event.Type, false)
	}
	return next
}

func reduceDeleteGameEvent(s *models.GameSession, act DeleteGameEvent) *models.GameSession {
	idx := -1
	for i, ev := range s.GameEvents {
		if ev.ID == act.EventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := s.Clone()
	removed := next.GameEvents[idx]
	next.GameEvents = append(next.GameEvents[:idx:idx], next.GameEvents[idx+1:]...)
	// Event removal and score correction happen in one transition so no
	// persistence snapshot can land between them.
	applyScoreEffect(next, removed.Type, true)
	return next
}

func reduceSetSeasonID(s *models.GameSession, act SetSeasonID) *models.GameSession {
	if act.ID == s.SeasonID && (act.ID == "" || s.TournamentID == "") {
		return s
	}
	next := s.Clone()
	next.SeasonID = act.ID
	// A season and a tournament are mutually exclusive, but clearing one
	// never clears the other.
	if act.ID != "" {
		next.TournamentID = ""
	}
	return next
}

func reduceSetTournamentID(s *models.GameSession, act SetTournamentID) *models.GameSession {
	if act.ID == s.TournamentID && (act.ID == "" || s.SeasonID == "") {
		return s
	}
	next := s.Clone()
	next.TournamentID = act.ID
	if act.ID != "" {
		next.SeasonID = ""
	}
	return next
}

func reduceSetHomeOrAway(s *models.GameSession, act SetHomeOrAway) *models.GameSession {
	value := act.Value
	if value != models.TeamHome && value != models.TeamAway {
		return s
	}
	if value == s.HomeOrAway {
		return s
	}
	next := s.Clone()
	next.HomeOrAway = value
	next.HomeScore, next.AwayScore = s.AwayScore, s.HomeScore
	return next
}

func reduceSetNumPeriods(s *models.GameSession, act SetNumPeriods) *models.GameSession {
	if s.GameStatus != models.GameStatusNotStarted {
		return s
	}
	n := act.NumPeriods
	if n < 1 {
		n = 1
	}
	if n > 2 {
		n = 2
	}
	if n == s.NumPeriods {
		return s
	}
	next := s.Clone()
	next.NumPeriods = n
	return next
}

func reduceMoveTacticalDisc(s *models.GameSession, act MoveTacticalDisc) *models.GameSession {
	idx := -1
	for i, d := range s.Tactical.Discs {
		if d.ID == act.DiscID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := s.Clone()
	next.Tactical.Discs[idx].Pos = clampPoint(act.Pos)
	return next
}

func reduceRemoveTacticalDisc(s *models.GameSession, act RemoveTacticalDisc) *models.GameSession {
	idx := -1
	for i, d := range s.Tactical.Discs {
		if d.ID == act.DiscID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := s.Clone()
	next.Tactical.Discs = append(next.Tactical.Discs[:idx:idx], next.Tactical.Discs[idx+1:]...)
	return next
}

func reduceResetGame(s *models.GameSession) *models.GameSession {
	next := models.NewGameSession(s.ID)
	next.TeamName = s.TeamName
	next.OpponentName = s.OpponentName
	next.GameDate = s.GameDate
	next.GameTime = s.GameTime
	next.GameLocation = s.GameLocation
	next.AgeGroup = s.AgeGroup
	next.SeasonID = s.SeasonID
	next.TournamentID = s.TournamentID
	next.HomeOrAway = s.HomeOrAway
	next.NumPeriods = s.NumPeriods
	next.PeriodDurationMinutes = s.PeriodDurationMinutes
	next.SubIntervalMinutes = s.SubIntervalMinutes
	next.NextSubDueTimeSeconds = float64(s.SubIntervalMinutes * 60)
	next.SelectedPlayerIDs = append([]string{}, s.SelectedPlayerIDs...)
	next.SelectedPersonnelIDs = append([]string{}, s.SelectedPersonnelIDs...)
	return next
}

func reduceLoadPersistedGame(s *models.GameSession, act LoadPersistedGame) *models.GameSession {
	if act.Data == nil {
		return s
	}
	next := act.Data.Clone()

	if next.ID == "" {
		next.ID = s.ID
	}
	if next.HomeOrAway != models.TeamHome && next.HomeOrAway != models.TeamAway {
		next.HomeOrAway = models.TeamHome
	}
	if next.NumPeriods != 1 && next.NumPeriods != 2 {
		next.NumPeriods = 2
	}
	if next.PeriodDurationMinutes < 1 {
		next.PeriodDurationMinutes = models.DefaultPeriodDurationMinutes
	}
	if next.CurrentPeriod < 1 {
		next.CurrentPeriod = 1
	}
	if next.CurrentPeriod > next.NumPeriods {
		next.CurrentPeriod = next.NumPeriods
	}
	if next.SubIntervalMinutes < 1 {
		next.SubIntervalMinutes = models.DefaultSubIntervalMinutes
	}
	if next.HomeScore < 0 {
		next.HomeScore = 0
	}
	if next.AwayScore < 0 {
		next.AwayScore = 0
	}
	if next.SelectedPlayerIDs == nil {
		next.SelectedPlayerIDs = []string{}
	}
	if next.SelectedPersonnelIDs == nil {
		next.SelectedPersonnelIDs = []string{}
	}
	if next.GameEvents == nil {
		next.GameEvents = []models.GameEvent{}
	}
	if next.CompletedIntervalDurations == nil {
		next.CompletedIntervalDurations = []models.IntervalLog{}
	}

	switch next.GameStatus {
	case models.GameStatusPeriodEnd, models.GameStatusGameEnd, models.GameStatusNotStarted:
		// restored as-is
	default:
		// A clock must not resume running merely because the page reloaded.
		next.GameStatus = models.GameStatusNotStarted
	}
	next.IsTimerRunning = false
	next.StartTimestamp = nil

	if next.TimeElapsedSeconds <= 0 {
		// Saved elapsed missing: fall back to period math.
		switch next.GameStatus {
		case models.GameStatusPeriodEnd:
			next.TimeElapsedSeconds = next.PeriodEndSeconds(next.CurrentPeriod)
		case models.GameStatusGameEnd:
			next.TimeElapsedSeconds = next.PeriodEndSeconds(next.NumPeriods)
		default:
			next.TimeElapsedSeconds = 0
		}
	}
	if next.LastSubConfirmationTimeSeconds < 0 {
		next.LastSubConfirmationTimeSeconds = 0
	}
	// The cadence anchor is the persisted confirmation time, not the loaded
	// elapsed value; anchoring to elapsed would silently reset a
	// mid-interval cadence on every reload.
	next.NextSubDueTimeSeconds = next.LastSubConfirmationTimeSeconds + float64(next.SubIntervalMinutes*60)
	next.SubAlertLevel = alertFor(next.TimeElapsedSeconds, next.NextSubDueTimeSeconds)
	return next
}

func reduceApplyHistorySnapshot(s *models.GameSession, act ApplyHistorySnapshot) *models.GameSession {
	sl := act.Slice
	next := s.Clone()
	next.TeamName = sl.TeamName
	next.OpponentName = sl.OpponentName
	next.GameDate = sl.GameDate
	next.GameTime = sl.GameTime
	next.GameLocation = sl.GameLocation
	next.GameNotes = sl.GameNotes
	next.AgeGroup = sl.AgeGroup
	next.SeasonID = sl.SeasonID
	next.TournamentID = sl.TournamentID
	next.HomeScore = sl.HomeScore
	next.AwayScore = sl.AwayScore
	next.HomeOrAway = sl.HomeOrAway
	next.NumPeriods = sl.NumPeriods
	next.PeriodDurationMinutes = sl.PeriodDurationMinutes
	next.CurrentPeriod = sl.CurrentPeriod
	next.GameStatus = sl.GameStatus
	next.SelectedPlayerIDs = append([]string{}, sl.SelectedPlayerIDs...)
	next.SelectedPersonnelIDs = append([]string{}, sl.SelectedPersonnelIDs...)
	next.GameEvents = append([]models.GameEvent{}, sl.GameEvents...)
	next.SubIntervalMinutes = sl.SubIntervalMinutes
	next.LastSubConfirmationTimeSeconds = sl.LastSubConfirmationTimeSeconds
	next.CompletedIntervalDurations = append([]models.IntervalLog{}, sl.CompletedIntervalDurations...)
	// Derived cadence fields are recomputed against the live clock rather
	// than restored.
	next.NextSubDueTimeSeconds = sl.LastSubConfirmationTimeSeconds + float64(next.SubIntervalMinutes*60)
	next.SubAlertLevel = alertFor(next.TimeElapsedSeconds, next.NextSubDueTimeSeconds)
	if next.GameStatus != models.GameStatusInProgress {
		next.IsTimerRunning = false
		next.StartTimestamp = nil
	}
	return next
}

// alertFor grades how close the clock is to the next substitution check.
func alertFor(elapsed, due float64) models.SubAlertLevel {
	switch {
	case elapsed >= due:
		return models.SubAlertDue
	case elapsed >= due-60:
		return models.SubAlertWarning
	default:
		return models.SubAlertNone
	}
}

// applyScoreEffect maps an event type onto the score slots under the
// current home/away orientation, clamping at zero.
func applyScoreEffect(s *models.GameSession, t models.GameEventType, remove bool) {
	delta := 1
	if remove {
		delta = -1
	}
	switch t {
	case models.EventGoal:
		if s.HomeOrAway == models.TeamHome {
			s.HomeScore = clampScore(s.HomeScore + delta)
		} else {
			s.AwayScore = clampScore(s.AwayScore + delta)
		}
	case models.EventOpponentGoal:
		if s.HomeOrAway == models.TeamHome {
			s.AwayScore = clampScore(s.AwayScore + delta)
		} else {
			s.HomeScore = clampScore(s.HomeScore + delta)
		}
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampPoint(p models.Point) models.Point {
	return models.Point{X: clamp01(p.X), Y: clamp01(p.Y)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
