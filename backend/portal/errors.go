package portal

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ConnectionError wraps a failure to reach the session bus.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to session bus: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError is returned when no Response signal arrives on the awaited
// request path before the step deadline.
type TimeoutError struct {
	Path dbus.ObjectPath
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for portal response on %s", e.Path)
}

// RemoteError is a failure reported by the portal, either as a D-Bus error
// reply (Name set) or as a non-zero Response code (Code set).
type RemoteError struct {
	Name    string
	Code    uint32
	Message string
}

func (e *RemoteError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

// MissingHandleError marks a code-0 response whose results lack a required
// value (session handle, stream list).
type MissingHandleError struct {
	Reason string
}

func (e *MissingHandleError) Error() string { return e.Reason }
