package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is read from the environment, after loading an optional .env file.
type Config struct {
	Port                  string
	ClientURL             string
	TaxiCount             int
	TickInterval          time.Duration
	SnapshotSchedule      string
	ZonesFile             string
	Store                 string
	FirebaseCredentials   string
	DatabaseURL           string
	MapsAPIKey            string
	BackendURL            string
	MapStyle              string
	FlyToZoom             float64
	RandomBearing         bool
	MaxConcurrentRequests int
	RandSeed              int64
	LogLevel              log.Level
	ExportDir             string
}

// Load reads the .env file when present and parses every setting.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("No .env file loaded, using process environment")
	}
	return FromEnv()
}

// FromEnv parses the settings from the process environment only.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Port:                getString("PORT", "8080"),
		ClientURL:           os.Getenv("CLIENT_URL"),
		SnapshotSchedule:    getString("SNAPSHOT_SCHEDULE", "@every 1m"),
		ZonesFile:           os.Getenv("ZONES_FILE"),
		Store:               getString("STORE", "memory"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		MapsAPIKey:          os.Getenv("MAPS_CREDENTIALS"),
		BackendURL:          getString("BACKEND_URL", "http://localhost:3000/api"),
		MapStyle:            getString("MAP_STYLE", "mapbox://styles/mapbox/dark-v11"),
		ExportDir:           getString("EXPORT_DIR", "."),
	}

	if cfg.TaxiCount, err = getInt("TAXI_COUNT", 50); err != nil {
		return cfg, err
	}
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", 2*time.Second); err != nil {
		return cfg, err
	}
	if cfg.TickInterval%time.Second != 0 {
		// the scheduler runs at one second resolution
		return cfg, fmt.Errorf("TICK_INTERVAL: must be a whole number of seconds, got %s", cfg.TickInterval)
	}
	if cfg.FlyToZoom, err = getFloat("FLY_TO_ZOOM", 15); err != nil {
		return cfg, err
	}
	if cfg.RandomBearing, err = getBool("FLY_TO_RANDOM_BEARING", true); err != nil {
		return cfg, err
	}
	if cfg.MaxConcurrentRequests, err = getInt("MAX_CONCURRENT_REQUESTS", 100); err != nil {
		return cfg, err
	}
	seed, err := getInt("RAND_SEED", 0)
	if err != nil {
		return cfg, err
	}
	cfg.RandSeed = int64(seed)

	if cfg.LogLevel, err = log.ParseLevel(getString("LOG_LEVEL", "info")); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.Store {
	case "memory", "firestore", "postgres":
	default:
		return cfg, fmt.Errorf("STORE: unknown store %q", cfg.Store)
	}
	if cfg.TaxiCount < 0 {
		return cfg, fmt.Errorf("TAXI_COUNT: must not be negative, got %d", cfg.TaxiCount)
	}
	if cfg.MaxConcurrentRequests <= 0 {
		return cfg, fmt.Errorf("MAX_CONCURRENT_REQUESTS: must be positive, got %d", cfg.MaxConcurrentRequests)
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
