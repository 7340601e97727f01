package services

import (
	"sort"

	"github.com/coreos/go-systemd/v22/dbus"
)

func statusFromUnit(unit dbus.UnitStatus) Status {
	loaded := unit.LoadState == "loaded"
	return Status{
		Name:        unit.Name,
		ActiveState: unit.ActiveState,
		Running:     unit.ActiveState == "active" && unit.SubState == "running",
		Failed:      unit.ActiveState == "failed",
		Exists:      loaded,
		Description: unit.Description,
	}
}

func statusFromProps(name string, props map[string]interface{}) Status {
	svc := Status{Name: name}

	if props == nil || props["UnitFileState"] == nil || props["UnitFileState"] == "" {
		return svc
	}

	svc.Exists = true
	svc.Enabled = props["UnitFileState"] == "enabled"
	svc.ActiveState, _ = props["ActiveState"].(string)
	svc.Failed = svc.ActiveState == "failed"

	subState, _ := props["SubState"].(string)
	svc.Running = svc.ActiveState == "active" && subState == "running"

	if desc, ok := props["Description"].(string); ok {
		svc.Description = desc
	}

	return svc
}

// SortedNames returns the unit names of a status map in stable order.
func SortedNames(statuses map[string]Status) []string {
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveUnits filters a status map down to the active unit names.
func ActiveUnits(statuses map[string]Status) []string {
	var active []string
	for name, svc := range statuses {
		if svc.Running || svc.ActiveState == "active" {
			active = append(active, name)
		}
	}
	return active
}
