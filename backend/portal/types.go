package portal

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/events"
)

// Step identifies how far a screencast test run progressed.
type Step string

const (
	StepConnect       Step = "Connect"
	StepGetPortal     Step = "GetPortal"
	StepCreateSession Step = "CreateSession"
	StepSelectSources Step = "SelectSources"
	StepStart         Step = "Start"
	StepComplete      Step = "Complete"
)

// ErrorCategory is the closed failure taxonomy consumed by the rules engine
// and the CLI.
type ErrorCategory string

const (
	CategoryConnectionError      ErrorCategory = "ConnectionError"
	CategoryRemoteError          ErrorCategory = "RemoteError"
	CategoryTimeout              ErrorCategory = "Timeout"
	CategoryUserCancelled        ErrorCategory = "UserCancelled"
	CategoryInterfaceUnsupported ErrorCategory = "InterfaceUnsupported"
	CategoryMissingHandle        ErrorCategory = "MissingHandle"
	CategoryUnclassified         ErrorCategory = "Unclassified"
)

// ScreenCastTestResult is the immutable outcome of one test run.
type ScreenCastTestResult struct {
	Success          bool                   `json:"success"`
	StepReached      Step                   `json:"step_reached"`
	ErrorCategory    ErrorCategory          `json:"error_category,omitempty"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	NodeID           uint32                 `json:"node_id,omitempty"`
	StreamProperties map[string]interface{} `json:"stream_properties,omitempty"`
	LogExcerpt       string                 `json:"log_excerpt,omitempty"`
}

// Cancelled reports whether the run ended because the user dismissed a portal
// dialog. Consumers must not present this as a defect.
func (r *ScreenCastTestResult) Cancelled() bool {
	return r.ErrorCategory == CategoryUserCancelled
}

// Bus is the subset of session-bus operations the screencast flow needs.
// Connect returns the real implementation; tests substitute a scripted fake.
type Bus interface {
	UniqueName() string
	PortalProperty(name string) (dbus.Variant, error)
	PortalProperties() (map[string]dbus.Variant, error)
	PortalCall(ctx context.Context, method string, args ...interface{}) (dbus.ObjectPath, error)
	Subscribe(ch chan<- *dbus.Signal)
	Unsubscribe(ch chan<- *dbus.Signal)
	AddResponseMatch(path dbus.ObjectPath) error
	RemoveResponseMatch(path dbus.ObjectPath) error
	Close() error
}

// ScreenCastTest drives the CreateSession, SelectSources, Start flow against
// the desktop portal. One instance runs one test at a time; concurrent runs
// need separate instances.
type ScreenCastTest struct {
	cfg     *config.ScreenCastConfig
	connect func(ctx context.Context) (Bus, error)
	events  chan<- events.Event
}
