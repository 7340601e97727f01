package dbus

// Standard D-Bus method names
const (
	DBUS_INTERFACE = "org.freedesktop.DBus"

	BUS_ADD_MATCH    = DBUS_INTERFACE + ".AddMatch"
	BUS_REMOVE_MATCH = DBUS_INTERFACE + ".RemoveMatch"
	DBUS_PROP_IFACE  = DBUS_INTERFACE + ".Properties"

	PROP_GET     = DBUS_PROP_IFACE + ".Get"
	PROP_GET_ALL = DBUS_PROP_IFACE + ".GetAll"
)

// Well-known error names the desktop bus returns when a destination exists
// but the requested interface, method or property does not.
const (
	ERR_UNKNOWN_INTERFACE = DBUS_INTERFACE + ".Error.UnknownInterface"
	ERR_UNKNOWN_METHOD    = DBUS_INTERFACE + ".Error.UnknownMethod"
	ERR_UNKNOWN_OBJECT    = DBUS_INTERFACE + ".Error.UnknownObject"
	ERR_UNKNOWN_PROPERTY  = DBUS_INTERFACE + ".Error.UnknownProperty"
	ERR_SERVICE_UNKNOWN   = DBUS_INTERFACE + ".Error.ServiceUnknown"
)
