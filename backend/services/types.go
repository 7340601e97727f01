package services

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/b0bbywan/go-portal-doctor/cache"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/events"
)

// Status of one systemd user unit relevant to screen sharing.
type Status struct {
	Name        string `json:"name"`
	ActiveState string `json:"active_state,omitempty"`
	Running     bool   `json:"running"`
	Failed      bool   `json:"failed"`
	Enabled     bool   `json:"enabled"`
	Exists      bool   `json:"exists"`
	Description string `json:"description,omitempty"`
}

// Backend polls portal and PipeWire user units over the systemd D-Bus API.
// It is strictly read-only: diagnosing never mutates unit state.
type Backend struct {
	conn   *dbus.Conn
	ctx    context.Context
	config *config.ServicesConfig

	cache   *cache.Cache[[]Status]
	watcher *watcher
	events  chan<- events.Event
}

const cacheKey = "units"
