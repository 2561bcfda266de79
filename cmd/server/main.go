// Package main runs the localhost anniversary server: the local document
// store, the remote sync adapter and the REST/websocket API the browser
// UI talks to.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hungduong/loveanniversary/cmd/server/handlers"
	"github.com/hungduong/loveanniversary/internal/config"
	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/ident"
	"github.com/hungduong/loveanniversary/internal/logging"
	"github.com/hungduong/loveanniversary/internal/storage"
	"github.com/hungduong/loveanniversary/internal/store"
	syncpkg "github.com/hungduong/loveanniversary/internal/sync"
	"github.com/hungduong/loveanniversary/internal/sync/remote"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("failed to load configuration", err)
		os.Exit(1)
	}

	logging.Init(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	log := logging.Get().With("server")

	kv, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Error("failed to open local storage", err, logging.Fields{"dataDir": cfg.DataDir})
		os.Exit(1)
	}
	defer kv.Close()

	bus := events.NewBus()
	st := store.New(kv, bus, store.Defaults{
		Person1:   cfg.Couple.Person1,
		Person2:   cfg.Couple.Person2,
		StartDate: cfg.Couple.StartDate,
	})

	resolver := ident.NewResolver(kv)
	coupleID, generated, err := resolver.Resolve(os.Getenv("ANNIVERSARY_COUPLE_ID"))
	if err != nil {
		log.Error("failed to resolve couple id", err)
		os.Exit(1)
	}
	if generated {
		log.Info("generated a new couple id", logging.Fields{"coupleId": coupleID})
	}

	var remoteStore syncpkg.DocumentStore
	if cfg.Remote.Enabled {
		remoteStore = remote.NewClient(remote.Config{
			Endpoint: cfg.Remote.Endpoint,
			Timeout:  cfg.Remote.FetchTimeout,
		})
	}

	adapter := syncpkg.New(st, remoteStore, bus, coupleID, syncpkg.Config{
		FetchTimeout:     cfg.Remote.FetchTimeout,
		RetryAttempts:    cfg.Remote.RetryAttempts,
		RetryBackoff:     cfg.Remote.RetryBackoff,
		AutoSaveInterval: cfg.Remote.AutoSaveInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The handshake can take retries * backoff; serve the UI meanwhile.
	go adapter.Start(ctx)

	hub := NewWSHub()
	unbridge := hub.Bridge(bus)

	mux := http.NewServeMux()
	registerRoutes(mux, adapter, resolver, hub)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("listening", logging.Fields{"addr": cfg.ListenAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", err)
	}

	unbridge()
	hub.Stop()
	adapter.Close()
}

// registerRoutes wires the REST and websocket endpoints.
func registerRoutes(mux *http.ServeMux, adapter *syncpkg.Adapter, resolver *ident.Resolver, hub *WSHub) {
	memories := handlers.NewMemoriesHandler(adapter)
	mux.HandleFunc("GET /api/memories", memories.List)
	mux.HandleFunc("POST /api/memories", memories.Create)
	mux.HandleFunc("PATCH /api/memories/{id}", memories.Update)
	mux.HandleFunc("DELETE /api/memories/{id}", memories.Delete)

	photos := handlers.NewPhotosHandler(adapter)
	mux.HandleFunc("GET /api/photos", photos.List)
	mux.HandleFunc("POST /api/photos", photos.Create)
	mux.HandleFunc("PATCH /api/photos/{id}", photos.Update)
	mux.HandleFunc("DELETE /api/photos/{id}", photos.Delete)

	couple := handlers.NewCoupleHandler(adapter, resolver)
	mux.HandleFunc("GET /api/couple", couple.Get)
	mux.HandleFunc("PATCH /api/couple", couple.Update)
	mux.HandleFunc("GET /api/stats", couple.Stats)
	mux.HandleFunc("GET /api/session", couple.Session)

	data := handlers.NewDataHandler(adapter)
	mux.HandleFunc("GET /api/export", data.Export)
	mux.HandleFunc("POST /api/import", data.Import)
	mux.HandleFunc("POST /api/reset", data.Reset)
	mux.HandleFunc("GET /api/theme", data.GetTheme)
	mux.HandleFunc("PUT /api/theme", data.SetTheme)

	syncHandler := handlers.NewSyncHandler(adapter)
	mux.HandleFunc("GET /api/sync/status", syncHandler.Status)
	mux.HandleFunc("POST /api/sync/retry", syncHandler.Retry)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"love-anniversary"}`))
	})

	mux.HandleFunc("GET /ws", HandleWebSocket(hub, resolver))
}
