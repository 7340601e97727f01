package envdetect

import (
	"fmt"
	"strings"
)

const Unknown = "unknown"

// Info describes the desktop session the tool is running in.
type Info struct {
	SessionType       string `json:"session_type"`
	CurrentDesktop    string `json:"current_desktop"`
	DesktopSession    string `json:"desktop_session,omitempty"`
	Compositor        string `json:"compositor,omitempty"`
	CompositorVersion string `json:"compositor_version,omitempty"`
	OSVersion         string `json:"os_version,omitempty"`
}

func (e *Info) IsWayland() bool {
	return strings.EqualFold(e.SessionType, "wayland")
}

func (e *Info) IsX11() bool {
	return strings.EqualFold(e.SessionType, "x11")
}

func (e *Info) IsKDE() bool {
	desktop := strings.ToLower(e.CurrentDesktop)
	return strings.Contains(desktop, "kde") || strings.Contains(desktop, "plasma")
}

func (e *Info) IsGNOME() bool {
	return strings.Contains(strings.ToLower(e.CurrentDesktop), "gnome")
}

var wlrootsCompositors = []string{"sway", "hyprland", "river", "wayfire", "dwl"}

func (e *Info) IsWlroots() bool {
	compositor := strings.ToLower(e.Compositor)
	desktop := strings.ToLower(e.CurrentDesktop)
	for _, wm := range wlrootsCompositors {
		if strings.Contains(compositor, wm) || strings.Contains(desktop, wm) {
			return true
		}
	}
	return false
}

func (e *Info) IsHyprland() bool {
	return strings.Contains(strings.ToLower(e.Compositor), "hyprland") ||
		strings.Contains(strings.ToLower(e.CurrentDesktop), "hyprland")
}

// Summary renders the environment as human-readable lines.
func (e *Info) Summary() string {
	lines := []string{
		fmt.Sprintf("Session Type: %s", e.SessionType),
		fmt.Sprintf("Desktop: %s", e.CurrentDesktop),
	}
	if e.DesktopSession != "" && e.DesktopSession != e.CurrentDesktop {
		lines = append(lines, fmt.Sprintf("Desktop Session: %s", e.DesktopSession))
	}
	if e.Compositor != "" {
		compositor := e.Compositor
		if e.CompositorVersion != "" {
			compositor += fmt.Sprintf(" (%s)", e.CompositorVersion)
		}
		lines = append(lines, fmt.Sprintf("Compositor: %s", compositor))
	}
	if e.OSVersion != "" && e.OSVersion != Unknown {
		lines = append(lines, fmt.Sprintf("OS: %s", e.OSVersion))
	}
	return strings.Join(lines, "\n")
}
