package rules

import (
	"strings"

	"github.com/b0bbywan/go-portal-doctor/backend/envdetect"
	"github.com/b0bbywan/go-portal-doctor/backend/pipewire"
	"github.com/b0bbywan/go-portal-doctor/backend/portal"
	"github.com/b0bbywan/go-portal-doctor/backend/portals"
	"github.com/b0bbywan/go-portal-doctor/backend/services"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var severityOrder = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// Suggestion is a remediation hint. Command is display-only; nothing is
// ever executed on the user's behalf.
type Suggestion struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
}

// Finding is one diagnosed issue.
type Finding struct {
	ID          string       `json:"id"`
	Severity    Severity     `json:"severity"`
	Title       string       `json:"title"`
	Component   string       `json:"component"`
	Details     string       `json:"details"`
	Evidence    string       `json:"evidence,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Context carries everything the rules inspect. Any field may be nil or
// empty when the corresponding probe was skipped or failed.
type Context struct {
	Environment      *envdetect.Info
	Backends         []portals.Backend
	PortalStatuses   map[string]services.Status
	PipeWireStatuses map[string]services.Status
	PortalsConfig    *portals.Config
	PipeWire         *pipewire.Info
	ScreenCast       *portal.ScreenCastTestResult
}

func (ctx *Context) backendNames() map[string]bool {
	names := make(map[string]bool, len(ctx.Backends))
	for _, b := range ctx.Backends {
		names[strings.ToLower(b.Name)] = true
	}
	return names
}

func (ctx *Context) unitActive(statuses map[string]services.Status, name string) bool {
	svc, ok := statuses[name]
	return ok && (svc.Running || svc.ActiveState == "active")
}
