package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"npcsim/apps/server/internal/auth"
	"npcsim/apps/server/internal/gateway"
	"npcsim/apps/server/internal/journal"
	"npcsim/apps/server/internal/lobby"
	"npcsim/apps/server/internal/reload"
	"npcsim/apps/server/internal/world"
)

const (
	defaultAddr     = ":8080"
	reapInterval    = time.Minute
	defaultWorldTTL = 10 * time.Minute
)

func main() {
	authService, authMode, err := auth.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init auth manager: %v", err)
	}
	defer authService.Close()
	journalService, journalMode, err := journal.NewServiceFromEnv(authMode)
	if err != nil {
		log.Fatalf("[Server] Failed to init journal service: %v", err)
	}
	defer journalService.Close()

	cfg := world.DefaultConfig()
	if ms := envInt("NPCSIM_TICK_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	cfg.MaxAgents = envInt("NPCSIM_MAX_AGENTS", cfg.MaxAgents)
	cfg.MaxSubscribers = envInt("NPCSIM_MAX_SUBSCRIBERS", cfg.MaxSubscribers)

	lby := lobby.New(cfg, nil, nil, journalService)
	defer lby.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths := reload.Paths{
		Catalog:  os.Getenv("NPCSIM_CONTENT"),
		Personas: os.Getenv("NPCSIM_PERSONAS"),
	}
	if paths.Catalog != "" || paths.Personas != "" {
		watcher, err := reload.New(paths, lby.SetContent)
		if err != nil {
			log.Fatalf("[Server] Failed to watch content: %v", err)
		}
		defer watcher.Close()
		if err := watcher.Load(); err != nil {
			log.Fatalf("[Server] Failed to load content: %v", err)
		}
		go watcher.Run(ctx)
		log.Printf("[Server] Watching content catalog=%q personas=%q", paths.Catalog, paths.Personas)
	}

	ttl := time.Duration(envInt("NPCSIM_WORLD_TTL_SEC", int(defaultWorldTTL/time.Second))) * time.Second
	go lby.RunReaper(ctx, reapInterval, ttl)

	gw := gateway.New(lby, authService, authMode == auth.ModeMemory)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	auth.NewHTTPHandler(authService).RegisterRoutes(mux)
	journal.NewHTTPHandler(authService, journalService).RegisterRoutes(mux)
	lobby.NewHTTPHandler(lby, authService).RegisterRoutes(mux)

	addr := os.Getenv("NPCSIM_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	log.Printf("[Server] Auth mode: %s", authMode)
	log.Printf("[Server] Journal mode: %s", journalMode)
	log.Printf("[Server] Starting WebSocket server on %s (tick %s)", addr, cfg.TickInterval)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[Server] Ignoring %s=%q: %v", key, raw, err)
		return fallback
	}
	return n
}
