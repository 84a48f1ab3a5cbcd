package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/smartecoq/assistant"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/db"
	"github.com/danielhkuo/smartecoq/geocode"
	"github.com/danielhkuo/smartecoq/navigator"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/router"
	"github.com/danielhkuo/smartecoq/routing"
	"github.com/danielhkuo/smartecoq/venue"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Venue description and its stands
	v, err := venue.Load(cfg.VenueFile)
	if err != nil {
		slog.Error("venue load failed", "error", err)
		os.Exit(1)
	}
	store := queue.NewStore(dbConn, cfg.DatabaseType, cfg.CodeSalt)
	created, err := store.EnsureStands(ctx, v.StandRequests())
	if err != nil {
		slog.Error("stand setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Venue ready", "name", v.Name, "stands", len(v.Stands), "created", created)

	// Routers, most precise first
	client := &http.Client{Timeout: 10 * time.Second}
	var routers []routing.Router
	if path := v.WalkwaysPath(); path != "" {
		g, err := routing.LoadGraph(ctx, path, v.WalkSpeed)
		if err != nil {
			slog.Warn("walkway graph unavailable", "path", path, "error", err)
		} else {
			routers = append(routers, g)
		}
	}
	if cfg.RoutingURL != "" {
		routers = append(routers, routing.NewOSRM(cfg.RoutingURL, cfg.RoutingProfile, client))
	}
	routers = append(routers, routing.NewGeodesic(v.WalkSpeed))

	// Upstream lookups; nil interfaces disable them
	var places navigator.Places
	if cfg.GeocoderURL != "" {
		places = geocode.NewGeocoder(cfg.GeocoderURL, client)
	}
	var ips navigator.IPLocator
	if cfg.IPLocatorURL != "" {
		ips = geocode.NewIPLocator(cfg.IPLocatorURL, client)
	}
	nav := navigator.New(v, routing.NewFallback(routers...), store, places, ips)

	// Assistant
	provider, err := assistant.FromConfig(ctx, cfg)
	if errors.Is(err, assistant.ErrNotConfigured) {
		slog.Warn("assistant disabled", "reason", err)
	} else if err != nil {
		slog.Error("assistant setup failed", "error", err)
		os.Exit(1)
	} else {
		slog.Info("assistant ready", "provider", provider.Name())
	}
	guidelines, err := v.Guidelines()
	if err != nil {
		slog.Error("guidelines load failed", "error", err)
		os.Exit(1)
	}
	bot := assistant.New(provider, guidelines)

	// Create router
	handler := router.NewRouter(dbConn, cfg, router.Services{
		Store:     store,
		Navigator: nav,
		Assistant: bot,
		Stands:    v.StandRequests(),
	})

	// Keep lines draining between requests
	go queue.NewDecayer(store, cfg.DecayInterval).Run(ctx)

	// Create server
	server := http.Server{
		Handler: handler,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
