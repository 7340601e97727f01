package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/b0bbywan/go-portal-doctor/logger"
)

const (
	AppName    = "portal-doctor"
	AppVersion = "0.2.0"
)

type Config struct {
	ScreenCast *ScreenCastConfig
	Services   *ServicesConfig
	PipeWire   *PipeWireConfig
	LogLevel   logger.Level
}

type ScreenCastConfig struct {
	CreateSessionTimeout time.Duration
	SelectSourcesTimeout time.Duration
	StartTimeout         time.Duration
}

type ServicesConfig struct {
	PortalUnits   []string
	PipeWireUnits []string
	XDGRuntimeDir string
	Watch         bool
}

type PipeWireConfig struct {
	ProbeEnabled  bool
	XDGRuntimeDir string
}

// Portal and PipeWire user units relevant to screen sharing.
var (
	defaultPortalUnits = []string{
		"xdg-desktop-portal.service",
		"xdg-desktop-portal-kde.service",
		"xdg-desktop-portal-gnome.service",
		"xdg-desktop-portal-gtk.service",
		"xdg-desktop-portal-wlr.service",
		"xdg-desktop-portal-hyprland.service",
		"xdg-desktop-portal-lxqt.service",
	}
	defaultPipeWireUnits = []string{
		"pipewire.service",
		"pipewire.socket",
		"wireplumber.service",
		"pipewire-media-session.service",
		"pipewire-pulse.service",
		"pipewire-pulse.socket",
	}
)

func xdgRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}

func New() (*Config, error) {
	viper.SetDefault("screencast.create_session_timeout", "10s")
	viper.SetDefault("screencast.select_sources_timeout", "120s")
	viper.SetDefault("screencast.start_timeout", "30s")

	viper.SetDefault("services.portal_units", defaultPortalUnits)
	viper.SetDefault("services.pipewire_units", defaultPipeWireUnits)
	viper.SetDefault("services.watch", true)

	viper.SetDefault("pipewire.probe", true)

	viper.SetDefault("LogLevel", "INFO")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join("/etc", AppName))
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", AppName))
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with defaults if not found
		if _, isNotFound := err.(viper.ConfigFileNotFoundError); !isNotFound {
			logger.Warn("failed to read config: %v", err)
		}
	}

	sc := ScreenCastConfig{
		CreateSessionTimeout: positiveDuration("screencast.create_session_timeout", 10*time.Second),
		SelectSourcesTimeout: positiveDuration("screencast.select_sources_timeout", 120*time.Second),
		StartTimeout:         positiveDuration("screencast.start_timeout", 30*time.Second),
	}

	runtimeDir := xdgRuntimeDir()

	svc := ServicesConfig{
		PortalUnits:   viper.GetStringSlice("services.portal_units"),
		PipeWireUnits: viper.GetStringSlice("services.pipewire_units"),
		XDGRuntimeDir: runtimeDir,
		Watch:         viper.GetBool("services.watch"),
	}

	pw := PipeWireConfig{
		ProbeEnabled:  viper.GetBool("pipewire.probe"),
		XDGRuntimeDir: runtimeDir,
	}

	cfg := Config{
		ScreenCast: &sc,
		Services:   &svc,
		PipeWire:   &pw,
		LogLevel:   logger.ParseLevel(viper.GetString("LogLevel")),
	}

	return &cfg, nil
}

func positiveDuration(key string, fallback time.Duration) time.Duration {
	d := viper.GetDuration(key)
	if d <= 0 {
		return fallback
	}
	return d
}
