package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"
)

// DefaultTimeout is the timeout used for plain D-Bus calls.
var DefaultTimeout = 5 * time.Second

// CallWithTimeout executes a D-Bus call with the default timeout.
func CallWithTimeout(call *dbus.Call) error {
	done := make(chan error, 1)
	go func() { done <- call.Err }()
	select {
	case err := <-done:
		return err
	case <-time.After(DefaultTimeout):
		return &TimeoutError{}
	}
}

// GetProperty retrieves a single property from a D-Bus object.
func GetProperty(obj dbus.BusObject, iface, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	call := obj.Call(PROP_GET, 0, iface, prop)
	if err := CallWithTimeout(call); err != nil {
		return dbus.Variant{}, err
	}
	if err := call.Store(&v); err != nil {
		return dbus.Variant{}, err
	}
	return v, nil
}

// GetAllProperties retrieves all properties of a D-Bus interface in a single call.
func GetAllProperties(obj dbus.BusObject, iface string) (map[string]dbus.Variant, error) {
	var props map[string]dbus.Variant
	call := obj.Call(PROP_GET_ALL, 0, iface)
	if err := CallWithTimeout(call); err != nil {
		return nil, err
	}
	return props, call.Store(&props)
}

// IsDBusError reports whether err is a dbus.Error with one of the given names.
func IsDBusError(err error, names ...string) bool {
	dbusErr, ok := err.(dbus.Error)
	if !ok {
		return false
	}
	for _, name := range names {
		if dbusErr.Name == name {
			return true
		}
	}
	return false
}

// ValidMemberName reports whether name is acceptable as a D-Bus interface
// member or property name. Hyphens are legal: portal backends emit property
// names such as "power-saver-enabled".
func ValidMemberName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '-':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	// A leading hyphen is not allowed either
	return name[0] != '-'
}

// Unbox strips any number of variant layers around a value. Portal
// implementations disagree on whether results carry an extra boxing layer;
// callers must treat both shapes as valid.
func Unbox(v interface{}) interface{} {
	for {
		variant, ok := v.(dbus.Variant)
		if !ok {
			return v
		}
		v = variant.Value()
	}
}

// FilterResponse parses an org.freedesktop.portal.Request Response signal
// body into its response code and results map.
func FilterResponse(sig *dbus.Signal) (uint32, map[string]dbus.Variant, error) {
	if sig == nil {
		return 0, nil, &SignalError{Reason: "channel closed"}
	}
	if len(sig.Body) < 1 {
		return 0, nil, &SignalError{Reason: "body too short"}
	}
	code, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, nil, &SignalError{Reason: "failed to parse response code"}
	}
	results := map[string]dbus.Variant{}
	if len(sig.Body) > 1 {
		if m, ok := sig.Body[1].(map[string]dbus.Variant); ok {
			results = m
		}
	}
	return code, results, nil
}

// --- Variant extraction helpers ---

// ExtractString extracts a string from a dbus.Variant, unboxing as needed.
func ExtractString(v dbus.Variant) (string, bool) {
	val, ok := Unbox(v).(string)
	return val, ok
}

// ExtractObjectPath extracts an object path from a dbus.Variant. Some portal
// backends return session handles as strings rather than object paths.
func ExtractObjectPath(v dbus.Variant) (dbus.ObjectPath, bool) {
	switch val := Unbox(v).(type) {
	case dbus.ObjectPath:
		return val, true
	case string:
		return dbus.ObjectPath(val), val != ""
	default:
		return "", false
	}
}

// MapString extracts a string from a props map by key.
func MapString(props map[string]dbus.Variant, key string) string {
	if v, ok := props[key]; ok {
		s, _ := ExtractString(v)
		return s
	}
	return ""
}

// Keys returns the keys of a props map (useful for debug logging).
func Keys(props map[string]dbus.Variant) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	return keys
}
