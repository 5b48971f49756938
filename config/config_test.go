package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TAXI_COUNT", "TICK_INTERVAL", "STORE", "FLY_TO_ZOOM",
		"FLY_TO_RANDOM_BEARING", "MAX_CONCURRENT_REQUESTS", "RAND_SEED", "LOG_LEVEL", "SNAPSHOT_SCHEDULE"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.TaxiCount != 50 || cfg.TickInterval != 2*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Store != "memory" || cfg.FlyToZoom != 15 || !cfg.RandomBearing {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.MaxConcurrentRequests != 100 || cfg.LogLevel != log.InfoLevel || cfg.SnapshotSchedule != "@every 1m" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TAXI_COUNT", "12")
	t.Setenv("TICK_INTERVAL", "5s")
	t.Setenv("STORE", "postgres")
	t.Setenv("FLY_TO_RANDOM_BEARING", "false")
	t.Setenv("RAND_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.TaxiCount != 12 || cfg.TickInterval != 5*time.Second {
		t.Errorf("overrides ignored: %+v", cfg)
	}
	if cfg.Store != "postgres" || cfg.RandomBearing || cfg.RandSeed != 42 || cfg.LogLevel != log.DebugLevel {
		t.Errorf("overrides ignored: %+v", cfg)
	}
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]string{
		"TAXI_COUNT":              "many",
		"TICK_INTERVAL":           "-1s",
		"STORE":                   "redis",
		"LOG_LEVEL":               "loud",
		"MAX_CONCURRENT_REQUESTS": "0",
		"FLY_TO_ZOOM":             "close",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("%s=%s: expected an error", key, value)
			}
		})
	}
}

func TestTickIntervalWholeSeconds(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "2500ms")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for a sub-second tick interval part")
	}
	t.Setenv("TICK_INTERVAL", "3000ms")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickInterval != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.TickInterval)
	}
}
