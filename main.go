package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"go-fleetmap/backend"
	"go-fleetmap/config"
	"go-fleetmap/console"
	"go-fleetmap/cronjobs"
	"go-fleetmap/db"
	"go-fleetmap/geocode"
	"go-fleetmap/mapview"
	"go-fleetmap/processor"
	"go-fleetmap/routes"
	"go-fleetmap/zones"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	log.WithFields(log.Fields{
		"client_url": cfg.ClientURL,
		"store":      cfg.Store,
		"taxis":      cfg.TaxiCount,
		"tick":       cfg.TickInterval.String(),
	}).Info("Configuration loaded")

	registry, err := zones.LoadOrDefault(cfg.ZonesFile)
	if err != nil {
		log.Fatalf("Failed to load zones: %v", err)
	}

	ctx := context.Background()
	store, err := db.Open(ctx, db.Settings{
		Kind:                cfg.Store,
		FirebaseCredentials: cfg.FirebaseCredentials,
		DatabaseURL:         cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}
	defer store.Close()

	var lookup geocode.AddressLookup
	geo, err := geocode.New(cfg.MapsAPIKey)
	if err != nil {
		log.Fatalf("Failed to create geocoder: %v", err)
	}
	if geo != nil {
		lookup = geo
	} else {
		log.Info("MAPS_CREDENTIALS not set, reverse geocoding disabled")
	}

	scheduler := cronjobs.NewScheduler()

	viewport := mapview.BrusselsViewport
	viewport.Style = cfg.MapStyle
	manager := console.NewManager(scheduler, console.ManagerOptions{
		TaxiCount:     cfg.TaxiCount,
		TickInterval:  cfg.TickInterval,
		Registry:      registry,
		Seed:          cfg.RandSeed,
		RandomBearing: cfg.RandomBearing,
		View: mapview.Options{
			Viewport:  viewport,
			FlyToZoom: cfg.FlyToZoom,
		},
	})

	err = scheduler.Cron("snapshot", cfg.SnapshotSchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := processor.PersistOccupancy(jobCtx, store, manager.List(), time.Now); err != nil {
			log.WithError(err).Error("Occupancy snapshot job failed")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule occupancy snapshots: %v", err)
	}
	scheduler.Start()

	r := routes.SetupRouter(routes.Deps{
		Manager:       manager,
		Store:         store,
		Geocoder:      lookup,
		Backend:       backend.NewClient(cfg.BackendURL),
		ClientURL:     cfg.ClientURL,
		ExportDir:     cfg.ExportDir,
		MaxConcurrent: cfg.MaxConcurrentRequests,
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown")
	}
	manager.Shutdown()
	scheduler.Stop()
}
