package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/touchlineapp/touchline/go/internal/autosave"
	"github.com/touchlineapp/touchline/go/internal/orchestrator"
	"github.com/touchlineapp/touchline/go/internal/report"
	"github.com/touchlineapp/touchline/go/internal/roster"
	"github.com/touchlineapp/touchline/go/internal/storage"
	"github.com/touchlineapp/touchline/go/internal/syncpub"
	"github.com/touchlineapp/touchline/go/internal/visibility"
	"github.com/touchlineapp/touchline/go/internal/wakelock"
)

// app bundles every running service for shutdown in reverse order.
type app struct {
	store        *storage.SQLiteStore
	bus          *visibility.Bus
	orch         *orchestrator.Orchestrator
	roster       *roster.App
	syncWorker   *syncpub.Worker
	publisher    syncpub.Publisher
	autoSaveOn   atomic.Bool
	shutdownSync context.CancelFunc
}

func buildApp(ctx context.Context, cfg *Config) (*app, error) {
	a := &app{}
	a.autoSaveOn.Store(cfg.AutoSave.Enabled)

	store, err := storage.OpenSQLite(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store

	recorder, err := syncpub.NewRecorder(ctx, store.DB())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init sync outbox: %w", err)
	}

	a.publisher = syncpub.NopPublisher{}
	if cfg.Sync.Enabled {
		jsCfg := syncpub.DefaultJetStreamConfig()
		jsCfg.URL = cfg.Sync.NATSURL
		jsCfg.StreamName = cfg.Sync.Stream
		jsCfg.SubjectPrefix = cfg.Sync.SubjectPrefix
		pub, err := syncpub.NewJetStreamPublisher(jsCfg)
		if err != nil {
			// The outbox keeps queueing; sync catches up next launch.
			log.Warn().Err(err).Msg("sync publisher unavailable, events stay queued")
		} else {
			a.publisher = pub
		}
	}

	syncCfg := syncpub.DefaultConfig()
	syncCfg.PollInterval = cfg.Sync.PollInterval
	a.syncWorker = syncpub.NewWorker(store.DB(), a.publisher, clockwork.NewRealClock(), syncCfg)

	syncCtx, cancelSync := context.WithCancel(context.Background())
	a.shutdownSync = cancelSync
	if err := a.syncWorker.Start(syncCtx); err != nil {
		cancelSync()
		store.Close()
		return nil, fmt.Errorf("start sync worker: %w", err)
	}

	a.roster = roster.NewApp(roster.NewRepository(store))

	a.bus = visibility.NewBus()
	a.orch = orchestrator.New(orchestrator.Config{
		Clock:      clockwork.NewRealClock(),
		Store:      store,
		Reporter:   report.Logger{},
		WakeLock:   wakelock.LogLock{},
		Visibility: a.bus,
		HistoryMax: cfg.History.MaxEntries,
		Delays: autosave.Delays{
			Short: cfg.AutoSave.ShortDelay,
			Long:  cfg.AutoSave.LongDelay,
		},
		AutoSaveEnabled: a.autoSaveOn.Load,
		OnSaved: func(group, gameID string, err error) {
			if err != nil {
				return
			}
			if rerr := recorder.RecordSaved(context.Background(), group, gameID); rerr != nil {
				log.Warn().Err(rerr).Str("group", group).Msg("could not queue sync event")
			}
		},
	})

	if err := a.orch.Open(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("open session: %w", err)
	}
	return a, nil
}

func (a *app) close() {
	if a.orch != nil {
		a.orch.Close()
	}
	if a.bus != nil {
		a.bus.Close()
	}
	if a.syncWorker != nil {
		if err := a.syncWorker.Stop(); err != nil {
			log.Warn().Err(err).Msg("sync worker stop")
		}
	}
	if a.shutdownSync != nil {
		a.shutdownSync()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}
}
