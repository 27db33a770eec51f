// Package main is the entry point for the Red Haven colony server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/engine"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/infra/assets"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/network"
	"github.com/redhaven/colony/internal/platform/config"
	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/platform/metrics"
	"github.com/redhaven/colony/internal/screen"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo    *storage.SQLiteEventRepository
	metrics *metrics.Collector
}

func (a *SQLitePersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		a.metrics.RecordEventError()
		return err
	}
	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
		a.metrics.RecordEventError()
		return fmt.Errorf("event payload is not an object: %w", err)
	}

	storageEvent := storage.GameEvent{
		ID:        event.ID,
		RunID:     event.RunID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Payload:   payloadMap,
		Tick:      event.Tick,
	}
	if err := a.repo.Append(context.Background(), storageEvent); err != nil {
		a.metrics.RecordEventError()
		return err
	}
	return nil
}

func main() {
	log.Println("[COLONY-SERVER] Initializing Red Haven colony server...")

	flags := loadServerFlags()
	cfg, err := resolveConfig(flags)
	if err != nil {
		log.Fatalf("[COLONY-SERVER] %v", err)
	}
	appLogger := logger.NewLoggerWithLevel(cfg.LogLevel)
	collector := metrics.Get()

	// Ledger database. Slots may live here too.
	appLogger.Info("Initializing SQLite database " + cfg.Storage.DBPath + "...")
	db, err := storage.InitSQLite(cfg.Storage.DBPath)
	if err != nil {
		if cfg.Storage.Backend == "sqlite" {
			appLogger.Error("Failed to initialize SQLite: " + err.Error())
			os.Exit(1)
		}
		appLogger.Warn("Event ledger disabled: " + err.Error())
		db = nil
	}

	var persister events.EventPersister
	var recon *storage.Reconstructor
	if db != nil {
		defer db.Close()
		eventRepo := storage.NewSQLiteEventRepository(db)
		persister = &SQLitePersisterAdapter{repo: eventRepo, metrics: collector}
		recon = storage.NewReconstructor(eventRepo)
	}
	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(persister)

	store := newSaveStore(cfg, db, appLogger)

	catalog, err := machine.ParseCatalog(machine.DefaultCatalog())
	if err != nil {
		appLogger.Error("Failed to load machine catalog: " + err.Error())
		os.Exit(1)
	}
	sprites := assets.NewCatalog(flags.AssetRoot, append(catalog.SpriteKeys(), engine.PlayerSpriteKey), cfg.Assets)

	appLogger.Info("Bootstrapping Engine...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewEngine(cfg, catalog, store, eventLog, appLogger, collector)
	if err := eng.SetAssets(sprites); err != nil {
		appLogger.Error("Asset catalog incomplete: " + err.Error())
		os.Exit(1)
	}
	if err := eng.Resume(ctx, storage.SlotAutosave); err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			appLogger.Info("No autosave found, starting a new run.")
		} else {
			appLogger.Warn("Autosave unusable, starting a new run: " + err.Error())
		}
		if err := eng.NewGame(); err != nil {
			appLogger.Error("Failed to start a new run: " + err.Error())
			os.Exit(1)
		}
	}

	stack := screen.NewStack(eng, screen.DefaultFactory, cfg.Simulation.CommandBuffer, appLogger)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, collector, cfg.Network.ClientSendBuffer)
	go hub.Run(ctx)

	// The HTTP handlers must not touch the engine, which belongs to the
	// frame loop goroutine.
	var currentRun atomic.Value
	currentRun.Store(eng.State().RunID)
	runID := func() string { return currentRun.Load().(string) }

	step := func(ctx context.Context) error {
		err := stack.Update(ctx, hub.Input())
		currentRun.Store(eng.State().RunID)
		hub.BroadcastFrame(network.Frame{
			Screen: stack.Top().ID(),
			Scene:  eng.Scene(),
			Popups: stack.Popups(),
		})
		return err
	}
	frameLoop := engine.NewTicker(cfg.FrameInterval(), step, appLogger)
	loopDone := make(chan error, 1)
	go func() { loopDone <- frameLoop.Start(ctx) }()

	// Setup API Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", collector.Handler())
	mux.HandleFunc("/metrics/prometheus", collector.PrometheusHandler())
	network.NewLedgerHandler(eventLog, recon, runID, appLogger).RegisterRoutes(mux)

	server := &http.Server{Addr: cfg.Network.Addr, Handler: mux}
	go func() {
		log.Println("[COLONY-SERVER] HTTP API & WS Server listening on " + cfg.Network.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[COLONY-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		cancel()
		<-loopDone
	case err := <-loopDone:
		if err != nil {
			appLogger.Error("Frame loop failed: " + err.Error())
			exitCode = 1
		}
		cancel()
	}

	log.Println("[COLONY-SERVER] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP shutdown: " + err.Error())
	}

	if !eng.Halted() {
		if err := eng.Save(shutdownCtx, storage.SlotAutosave); err != nil {
			appLogger.Error("Final autosave failed: " + err.Error())
		}
	}
	if recon != nil {
		logRecap(shutdownCtx, recon, eng.State().RunID, appLogger)
	}
	frames, skipped := frameLoop.Frames()
	appLogger.Info(fmt.Sprintf("Ran %d frames (%d skipped).", frames, skipped))

	if exitCode != 0 {
		if db != nil {
			db.Close()
		}
		os.Exit(exitCode)
	}
}

func newSaveStore(cfg *config.Config, db *sql.DB, log *logger.Logger) storage.SaveStore {
	if cfg.Storage.Backend == "sqlite" {
		log.Info("Save slots stored in " + cfg.Storage.DBPath)
		return storage.NewSQLiteSaveStore(db, log)
	}
	log.Info("Save slots stored in " + cfg.Storage.SaveDir)
	return storage.NewFileStore(cfg.Storage.SaveDir, log)
}

func logRecap(ctx context.Context, recon *storage.Reconstructor, runID string, log *logger.Logger) {
	sum, err := recon.Summarize(ctx, runID)
	if err != nil {
		log.Warn("Run recap unavailable: " + err.Error())
		return
	}
	log.Event("RUN_RECAP", runID, fmt.Sprintf("trades=%d rejected=%d expirations=%d milestone=%d deaths=%d last_tick=%d",
		sum.TradesApplied, sum.TradesRejected, sum.Expirations, sum.Milestone, sum.Deaths, sum.LastTick))
}
