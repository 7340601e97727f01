package portals

// Backend describes one installed xdg-desktop-portal backend, parsed from
// its .portal file.
type Backend struct {
	Name       string   `json:"name"`
	DBusName   string   `json:"dbus_name"`
	PortalFile string   `json:"portal_file"`
	UseIn      []string `json:"use_in"`
}

// Config is the user's portals.conf, read-only.
type Config struct {
	DefaultBackend string `json:"default_backend,omitempty"`
	// InterfaceBackends maps a portal interface (lowercased) to the backend
	// configured for it.
	InterfaceBackends map[string]string `json:"interface_backends,omitempty"`
	FilePath          string            `json:"file_path"`
	RawContent        string            `json:"-"`
}
