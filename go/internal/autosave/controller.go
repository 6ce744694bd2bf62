// Package autosave persists session state on three cadences: an instant
// tier for statistics-critical fields, a short debounce for typed
// metadata, and a long debounce for drag-frequency tactical updates.
// Change detection is by canonical content, never object identity: the
// host rebuilds the observed values on every unrelated update, so
// identity checks would both spuriously fire and spuriously skip.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/touchlineapp/touchline/go/internal/canon"
	"github.com/touchlineapp/touchline/go/internal/models"
	"github.com/touchlineapp/touchline/go/internal/report"
)

// Tier is one auto-save cadence.
type Tier string

const (
	TierInstant Tier = "instant"
	TierShort   Tier = "short"
	TierLong    Tier = "long"
)

// Delays configures the debounced tiers; the instant tier has none.
type Delays struct {
	Short time.Duration
	Long  time.Duration
}

func DefaultDelays() Delays {
	return Delays{Short: 500 * time.Millisecond, Long: 2 * time.Second}
}

// Group names a slice of session fields observed at one cadence.
type Group struct {
	Name    string
	Tier    Tier
	Extract func(*models.GameSession) any
}

// DefaultGroups is the standard field partition: losing a score or event
// write is unacceptable, metadata tolerates a keystroke-coalescing
// window, and the tactics board trades its newest sub-second positions
// for drastically fewer writes.
func DefaultGroups() []Group {
	return []Group{
		{
			Name: "match",
			Tier: TierInstant,
			Extract: func(s *models.GameSession) any {
				return map[string]any{
					"home_score":     s.HomeScore,
					"away_score":     s.AwayScore,
					"home_or_away":   s.HomeOrAway,
					"game_status":    s.GameStatus,
					"current_period": s.CurrentPeriod,
					"game_events":    s.GameEvents,
					"intervals":      s.CompletedIntervalDurations,
				}
			},
		},
		{
			Name: "metadata",
			Tier: TierShort,
			Extract: func(s *models.GameSession) any {
				return map[string]any{
					"team_name":     s.TeamName,
					"opponent_name": s.OpponentName,
					"game_date":     s.GameDate,
					"game_time":     s.GameTime,
					"game_location": s.GameLocation,
					"game_notes":    s.GameNotes,
					"age_group":     s.AgeGroup,
					"season_id":     s.SeasonID,
					"tournament_id": s.TournamentID,
					"players":       s.SelectedPlayerIDs,
					"personnel":     s.SelectedPersonnelIDs,
				}
			},
		},
		{
			Name: "tactical",
			Tier: TierLong,
			Extract: func(s *models.GameSession) any {
				return s.Tactical
			},
		},
	}
}

// PersistFunc writes one session snapshot durably.
type PersistFunc func(ctx context.Context, s *models.GameSession) error

// Config assembles a Controller.
type Config struct {
	Clock    clockwork.Clock
	Groups   []Group
	Delays   Delays
	Persist  PersistFunc
	Policy   RetryPolicy
	Reporter report.Reporter
	// Enabled is read fresh at fire time; a scheduled save whose window
	// closes while saving is disabled is skipped, not queued.
	Enabled func() bool
	// OnResult, when set, hears the outcome of every completed persist
	// run (nil error on success). Cancelled runs are not results.
	OnResult func(group string, gameID string, err error)
}

// Controller observes session snapshots and drives the persistence
// callback per tier, with retry on transient failures.
type Controller struct {
	clock    clockwork.Clock
	delays   Delays
	persist  PersistFunc
	policy   RetryPolicy
	reporter report.Reporter
	enabled  func() bool
	onResult func(group string, gameID string, err error)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	groups []*groupState
	closed bool
}

type groupState struct {
	group    Group
	lastHash string
	// waiting holds the snapshot inside an open debounce window.
	waiting *models.GameSession
	timer   clockwork.Timer
	// pending is ready for the flusher; the flusher always takes the
	// newest value, so superseded snapshots are never written.
	pending  *models.GameSession
	flushing bool
}

// NewController returns a controller with no baselines; callers seed
// them through ResetBaselines before the first Observe.
func NewController(cfg Config) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		clock:    cfg.Clock,
		delays:   cfg.Delays,
		persist:  cfg.Persist,
		policy:   cfg.Policy,
		reporter: cfg.Reporter,
		enabled:  cfg.Enabled,
		onResult: cfg.OnResult,
		ctx:      ctx,
		cancel:   cancel,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.reporter == nil {
		c.reporter = report.Nop{}
	}
	for _, g := range cfg.Groups {
		c.groups = append(c.groups, &groupState{group: g})
	}
	return c
}

// Observe compares each group's content against its baseline and
// schedules persistence for the ones that changed.
func (c *Controller) Observe(s *models.GameSession) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	var snap *models.GameSession
	for _, gs := range c.groups {
		h := canon.Hash(gs.group.Extract(s))
		if h == gs.lastHash {
			continue
		}
		gs.lastHash = h
		if snap == nil {
			snap = s.Clone()
		}
		if gs.group.Tier == TierInstant {
			gs.pending = snap
			c.startFlusherLocked(gs)
			continue
		}
		// Trailing-edge debounce: every change restarts the window.
		gs.waiting = snap
		if gs.timer != nil {
			gs.timer.Stop()
		}
		g := gs
		gs.timer = c.clock.AfterFunc(c.delayFor(gs.group.Tier), func() { c.windowClosed(g) })
	}
}

// ResetBaselines rebases every group on a different match, cancelling
// anything outstanding. Without this, switching games would read the new
// match's initial values as a "change" against the old match's trailing
// values and save them under the wrong identity.
func (c *Controller) ResetBaselines(s *models.GameSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, gs := range c.groups {
		if gs.timer != nil {
			gs.timer.Stop()
			gs.timer = nil
		}
		gs.waiting = nil
		gs.pending = nil
		if s != nil {
			gs.lastHash = canon.Hash(gs.group.Extract(s))
		} else {
			gs.lastHash = ""
		}
	}
}

// Close abandons all outstanding debounce windows and retry waits.
// Abandoned operations never fire and never report.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	for _, gs := range c.groups {
		if gs.timer != nil {
			gs.timer.Stop()
			gs.timer = nil
		}
		gs.waiting = nil
		gs.pending = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) delayFor(t Tier) time.Duration {
	if t == TierLong {
		return c.delays.Long
	}
	return c.delays.Short
}

func (c *Controller) windowClosed(gs *groupState) {
	c.mu.Lock()
	if c.closed || gs.waiting == nil {
		c.mu.Unlock()
		return
	}
	gs.pending = gs.waiting
	gs.waiting = nil
	gs.timer = nil
	c.startFlusherLocked(gs)
	c.mu.Unlock()
}

func (c *Controller) startFlusherLocked(gs *groupState) {
	if gs.flushing {
		return
	}
	gs.flushing = true
	go c.flush(gs)
}

// flush drains pending snapshots for one group, newest-wins. A single
// flusher per group keeps same-tier writes ordered.
func (c *Controller) flush(gs *groupState) {
	for {
		c.mu.Lock()
		snap := gs.pending
		gs.pending = nil
		if snap == nil || c.closed {
			gs.flushing = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		if c.ctx.Err() != nil {
			return
		}
		if c.enabled != nil && !c.enabled() {
			log.Debug().Str("group", gs.group.Name).Msg("auto-save disabled, skipping scheduled save")
			continue
		}

		err := RunWithRetry(c.ctx, c.clock, c.policy, func(ctx context.Context) error {
			return c.persist(ctx, snap)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || c.ctx.Err() != nil {
				// Intentional abandon, not a failure.
				return
			}
			c.reporter.Report(err, report.Context{
				Operation: "autosave",
				GameID:    snap.ID,
				Metadata:  map[string]string{"group": gs.group.Name, "tier": string(gs.group.Tier)},
			})
		}
		if c.onResult != nil {
			c.onResult(gs.group.Name, snap.ID, err)
		}
	}
}
