package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	dbusutil "github.com/b0bbywan/go-portal-doctor/backend/internal/dbus"
)

// classify folds a low-level failure into the closed result taxonomy.
func classify(step Step, err error) *ScreenCastTestResult {
	category, message := categorize(err)
	return &ScreenCastTestResult{
		Success:       false,
		StepReached:   step,
		ErrorCategory: category,
		ErrorMessage:  message,
	}
}

func cancelled(step Step, message string) *ScreenCastTestResult {
	return &ScreenCastTestResult{
		Success:       false,
		StepReached:   step,
		ErrorCategory: CategoryUserCancelled,
		ErrorMessage:  message,
	}
}

func categorize(err error) (ErrorCategory, string) {
	var connErr *ConnectionError
	var timeoutErr *TimeoutError
	var remoteErr *RemoteError
	var missingErr *MissingHandleError

	switch {
	case errors.As(err, &connErr):
		return CategoryConnectionError, connErr.Error()
	case errors.As(err, &timeoutErr):
		// Message carries the awaited path for the report
		return CategoryTimeout, timeoutErr.Error()
	case errors.As(err, &missingErr):
		return CategoryMissingHandle, missingErr.Error()
	case errors.As(err, &remoteErr):
		if interfaceUnsupported(remoteErr.Name) {
			return CategoryInterfaceUnsupported, remoteErr.Error()
		}
		return CategoryRemoteError, remoteErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout, err.Error()
	}

	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		if interfaceUnsupported(dbusErr.Name) {
			return CategoryInterfaceUnsupported, dbusErr.Error()
		}
		return CategoryRemoteError, dbusErr.Error()
	}

	// Escape hatch: the taxonomy stays closed, the dynamic type goes into
	// the message.
	return CategoryUnclassified, fmt.Sprintf("%T: %v", err, err)
}

// interfaceUnsupported reports whether a D-Bus error name means the requested
// capability interface does not exist on the portal, as opposed to the portal
// malfunctioning. The remediation differs: wrong backend installed vs backend
// broken.
func interfaceUnsupported(name string) bool {
	switch name {
	case dbusutil.ERR_UNKNOWN_INTERFACE,
		dbusutil.ERR_UNKNOWN_METHOD,
		dbusutil.ERR_UNKNOWN_OBJECT,
		dbusutil.ERR_UNKNOWN_PROPERTY:
		return true
	default:
		return false
	}
}

// sessionHandle extracts the session handle from CreateSession results,
// tolerating an extra variant layer.
func sessionHandle(results map[string]dbus.Variant) (dbus.ObjectPath, error) {
	v, ok := results["session_handle"]
	if !ok {
		return "", &MissingHandleError{Reason: "CreateSession did not return a session handle"}
	}
	path, ok := dbusutil.ExtractObjectPath(v)
	if !ok {
		return "", &MissingHandleError{Reason: "CreateSession returned an empty session handle"}
	}
	return path, nil
}

// firstStream extracts the first (node id, properties) entry from Start
// results. Both the list and its entries may carry extra variant boxing.
func firstStream(results map[string]dbus.Variant) (uint32, map[string]interface{}, error) {
	v, ok := results["streams"]
	if !ok {
		return 0, nil, &MissingHandleError{Reason: "Start returned no streams"}
	}

	var entries []interface{}
	switch s := dbusutil.Unbox(v).(type) {
	case []interface{}:
		entries = s
	case [][]interface{}:
		for _, e := range s {
			entries = append(entries, e)
		}
	default:
		return 0, nil, &MissingHandleError{Reason: fmt.Sprintf("Start returned streams of unexpected type %T", s)}
	}
	if len(entries) == 0 {
		return 0, nil, &MissingHandleError{Reason: "Start returned no streams"}
	}

	tuple, ok := dbusutil.Unbox(entries[0]).([]interface{})
	if !ok || len(tuple) < 2 {
		return 0, nil, &MissingHandleError{Reason: "Start returned a malformed stream entry"}
	}

	node, ok := toUint32(dbusutil.Unbox(tuple[0]))
	if !ok {
		return 0, nil, &MissingHandleError{Reason: "stream entry has no numeric node id"}
	}

	props := map[string]interface{}{}
	if m, ok := dbusutil.Unbox(tuple[1]).(map[string]dbus.Variant); ok {
		for k, val := range m {
			props[k] = dbusutil.Unbox(val)
		}
	}

	return node, props, nil
}

func toUint32(v interface{}) (uint32, bool) {
	switch n := v.(type) {
	case uint32:
		return n, true
	case uint64:
		return uint32(n), true
	case int32:
		return uint32(n), n >= 0
	case int64:
		return uint32(n), n >= 0
	case int:
		return uint32(n), n >= 0
	default:
		return 0, false
	}
}
