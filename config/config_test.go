package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("App.Port = %q, want 9090", cfg.App.Port)
	}
	if cfg.Reservation.HoldWindow != 24*time.Hour {
		t.Errorf("HoldWindow = %v, want 24h", cfg.Reservation.HoldWindow)
	}
	if cfg.Reservation.SweepInterval != 30*time.Second {
		t.Errorf("SweepInterval = %v, want 30s", cfg.Reservation.SweepInterval)
	}
	if cfg.DB.Enabled || cfg.Redis.Enabled {
		t.Errorf("backing services enabled by default: db=%v redis=%v", cfg.DB.Enabled, cfg.Redis.Enabled)
	}
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_PORT=7000\nRESERVATION_HOLD_WINDOW=2h\nDB_ENABLED=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESERVATION_SWEEP_INTERVAL", "5s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.Port != "7000" {
		t.Errorf("App.Port = %q, want 7000", cfg.App.Port)
	}
	if cfg.Reservation.HoldWindow != 2*time.Hour {
		t.Errorf("HoldWindow = %v, want 2h", cfg.Reservation.HoldWindow)
	}
	if cfg.Reservation.SweepInterval != 5*time.Second {
		t.Errorf("SweepInterval = %v, want 5s", cfg.Reservation.SweepInterval)
	}
	if !cfg.DB.Enabled {
		t.Error("DB.Enabled = false, want true")
	}
}

func TestLoadConfigMalformedDurationFallsBack(t *testing.T) {
	t.Setenv("RESERVATION_HOLD_WINDOW", "soon")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Reservation.HoldWindow != 24*time.Hour {
		t.Errorf("HoldWindow = %v, want fallback 24h", cfg.Reservation.HoldWindow)
	}
}
