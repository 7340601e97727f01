package services

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/b0bbywan/go-portal-doctor/cache"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/events"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// New connects to the user systemd instance. A nil config disables the
// backend (no systemd on the host, e.g.).
func New(ctx context.Context, cfg *config.ServicesConfig) (*Backend, error) {
	if cfg == nil || len(cfg.PortalUnits)+len(cfg.PipeWireUnits) == 0 {
		return nil, nil
	}

	conn, err := dbus.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, err
	}

	return &Backend{
		conn:   conn,
		ctx:    ctx,
		config: cfg,
		cache:  cache.New[[]Status](0),
	}, nil
}

// Notify sets an optional channel receiving unit-update events.
func (b *Backend) Notify(ch chan<- events.Event) {
	b.events = ch
}

// Start loads the initial cache and, when configured, the unit watcher.
func (b *Backend) Start() error {
	if _, err := b.ListStatuses(); err != nil {
		return err
	}

	if b.config.Watch {
		b.watcher = newWatcher(b)
		if err := b.watcher.start(); err != nil {
			// Diagnostics still work without live invalidation
			logger.Warn("[services] unit watcher unavailable: %v", err)
			b.watcher = nil
		}
	}
	return nil
}

// Close stops the watcher and closes the systemd connection.
func (b *Backend) Close() {
	if b.watcher != nil {
		b.watcher.stop()
		b.watcher = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

func (b *Backend) watched() []string {
	out := make([]string, 0, len(b.config.PortalUnits)+len(b.config.PipeWireUnits))
	out = append(out, b.config.PortalUnits...)
	out = append(out, b.config.PipeWireUnits...)
	return out
}

// ListStatuses returns the status of every watched unit, from cache when warm.
func (b *Backend) ListStatuses() ([]Status, error) {
	if statuses, ok := b.cache.Get(cacheKey); ok {
		logger.Debug("[services] returning %d units from cache", len(statuses))
		return statuses, nil
	}

	logger.Debug("[services] cache miss, loading units")
	start := time.Now()

	names := b.watched()
	units, err := b.conn.ListUnitsByNamesContext(b.ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]dbus.UnitStatus, len(units))
	for _, unit := range units {
		byName[unit.Name] = unit
	}

	statuses := make([]Status, 0, len(names))
	for _, name := range names {
		unit, ok := byName[name]
		if !ok {
			statuses = append(statuses, Status{Name: name})
			continue
		}
		svc := statusFromUnit(unit)
		if svc.Exists {
			svc.Enabled = b.unitEnabled(name)
		}
		statuses = append(statuses, svc)
	}
	logger.Debug("[services] loaded %d units in %s", len(statuses), time.Since(start))

	b.cache.Set(cacheKey, statuses)
	return statuses, nil
}

// StatusMap returns the watched subset of units as a name-indexed map.
func (b *Backend) StatusMap(names []string) (map[string]Status, error) {
	statuses, err := b.ListStatuses()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make(map[string]Status, len(names))
	for _, svc := range statuses {
		if wanted[svc.Name] {
			out[svc.Name] = svc
		}
	}
	return out, nil
}

// PortalStatuses returns the status of the portal units.
func (b *Backend) PortalStatuses() (map[string]Status, error) {
	return b.StatusMap(b.config.PortalUnits)
}

// PipeWireStatuses returns the status of the PipeWire units.
func (b *Backend) PipeWireStatuses() (map[string]Status, error) {
	return b.StatusMap(b.config.PipeWireUnits)
}

// RefreshUnit reloads one unit from systemd and updates the cache.
func (b *Backend) RefreshUnit(ctx context.Context, name string) (*Status, error) {
	props, err := b.conn.GetUnitPropertiesContext(ctx, name)
	if err != nil {
		logger.Debug("[services] failed to get %s unit properties: %v", name, err)
		props = nil
	}

	svc := statusFromProps(name, props)
	b.updateCached(svc)
	events.Emit(b.events, events.Event{Type: events.TypeServiceUpdated, Data: svc})
	return &svc, nil
}

func (b *Backend) updateCached(updated Status) {
	statuses, ok := b.cache.Get(cacheKey)
	if !ok {
		return
	}
	found := false
	for i, svc := range statuses {
		if svc.Name == updated.Name {
			statuses[i] = updated
			found = true
			break
		}
	}
	if !found {
		statuses = append(statuses, updated)
	}
	b.cache.Set(cacheKey, statuses)
}

// InvalidateCache forces the next ListStatuses to reload from systemd.
func (b *Backend) InvalidateCache() {
	b.cache.Delete(cacheKey)
}

func (b *Backend) unitEnabled(name string) bool {
	prop, err := b.conn.GetUnitPropertyContext(b.ctx, name, "UnitFileState")
	if err != nil {
		logger.Debug("[services] failed to get %s UnitFileState: %v", name, err)
		return false
	}
	state, _ := prop.Value.Value().(string)
	return state == "enabled"
}
