package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if cfg.ScreenCast.CreateSessionTimeout != 10*time.Second {
		t.Errorf("CreateSessionTimeout = %v, want 10s", cfg.ScreenCast.CreateSessionTimeout)
	}
	if cfg.ScreenCast.SelectSourcesTimeout != 120*time.Second {
		t.Errorf("SelectSourcesTimeout = %v, want 120s", cfg.ScreenCast.SelectSourcesTimeout)
	}
	if cfg.ScreenCast.StartTimeout != 30*time.Second {
		t.Errorf("StartTimeout = %v, want 30s", cfg.ScreenCast.StartTimeout)
	}

	if len(cfg.Services.PortalUnits) == 0 {
		t.Error("PortalUnits should default to the well-known portal units")
	}
	if len(cfg.Services.PipeWireUnits) == 0 {
		t.Error("PipeWireUnits should default to the well-known pipewire units")
	}
	if cfg.Services.XDGRuntimeDir == "" {
		t.Error("XDGRuntimeDir should never be empty")
	}
	if !cfg.PipeWire.ProbeEnabled {
		t.Error("pipewire probe should default to enabled")
	}
}

func TestDefaultUnitLists(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	found := false
	for _, u := range cfg.Services.PortalUnits {
		if u == "xdg-desktop-portal.service" {
			found = true
		}
	}
	if !found {
		t.Error("portal unit list must include xdg-desktop-portal.service")
	}

	found = false
	for _, u := range cfg.Services.PipeWireUnits {
		if u == "pipewire.service" {
			found = true
		}
	}
	if !found {
		t.Error("pipewire unit list must include pipewire.service")
	}
}
