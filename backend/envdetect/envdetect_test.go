package envdetect

import (
	"strings"
	"testing"
)

func clearSessionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"XDG_SESSION_TYPE", "WAYLAND_DISPLAY", "DISPLAY",
		"XDG_CURRENT_DESKTOP", "DESKTOP_SESSION",
		"KDE_FULL_SESSION", "GNOME_DESKTOP_SESSION_ID",
		"HYPRLAND_INSTANCE_SIGNATURE", "SWAYSOCK",
	} {
		t.Setenv(key, "")
	}
}

func TestDetectSessionType(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit wayland",
			env:  map[string]string{"XDG_SESSION_TYPE": "wayland"},
			want: "wayland",
		},
		{
			name: "explicit x11",
			env:  map[string]string{"XDG_SESSION_TYPE": "x11"},
			want: "x11",
		},
		{
			name: "uppercase normalized",
			env:  map[string]string{"XDG_SESSION_TYPE": "Wayland"},
			want: "wayland",
		},
		{
			name: "wayland display fallback",
			env:  map[string]string{"WAYLAND_DISPLAY": "wayland-0"},
			want: "wayland",
		},
		{
			name: "x11 display fallback",
			env:  map[string]string{"DISPLAY": ":0"},
			want: "x11",
		},
		{
			name: "wayland display wins over x11",
			env:  map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"},
			want: "wayland",
		},
		{
			name: "nothing set",
			env:  map[string]string{},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSessionEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := detectSessionType(); got != tt.want {
				t.Errorf("detectSessionType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectCurrentDesktop(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "xdg current desktop",
			env:  map[string]string{"XDG_CURRENT_DESKTOP": "KDE"},
			want: "KDE",
		},
		{
			name: "multi-value preserved",
			env:  map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"},
			want: "ubuntu:GNOME",
		},
		{
			name: "desktop session fallback",
			env:  map[string]string{"DESKTOP_SESSION": "plasma"},
			want: "plasma",
		},
		{
			name: "kde marker",
			env:  map[string]string{"KDE_FULL_SESSION": "true"},
			want: "KDE",
		},
		{
			name: "hyprland marker",
			env:  map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc123"},
			want: "Hyprland",
		},
		{
			name: "sway socket",
			env:  map[string]string{"SWAYSOCK": "/run/user/1000/sway.sock"},
			want: "sway",
		},
		{
			name: "nothing set",
			env:  map[string]string{},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSessionEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := detectCurrentDesktop(); got != tt.want {
				t.Errorf("detectCurrentDesktop() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectCompositorFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "hyprland signature",
			env:  map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc"},
			want: "Hyprland",
		},
		{
			name: "sway socket",
			env:  map[string]string{"SWAYSOCK": "/tmp/sway.sock"},
			want: "Sway",
		},
		{
			name: "kde desktop",
			env:  map[string]string{"XDG_CURRENT_DESKTOP": "KDE"},
			want: "KWin",
		},
		{
			name: "plasma desktop",
			env:  map[string]string{"XDG_CURRENT_DESKTOP": "plasma"},
			want: "KWin",
		},
		{
			name: "gnome desktop",
			env:  map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"},
			want: "GNOME Shell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSessionEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := detectCompositor(); got != tt.want {
				t.Errorf("detectCompositor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name       string
		compositor string
		out        string
		want       string
	}{
		{
			name:       "sway single line",
			compositor: "Sway",
			out:        "sway version 1.9\n",
			want:       "1.9",
		},
		{
			name:       "gnome shell",
			compositor: "GNOME Shell",
			out:        "GNOME Shell 46.2",
			want:       "46.2",
		},
		{
			name:       "hyprctl multiline",
			compositor: "Hyprland",
			out:        "Hyprland, built from branch main\nversion v0.41.2\nflags set:\n",
			want:       "v0.41.2",
		},
		{
			name:       "hyprctl without version line",
			compositor: "Hyprland",
			out:        "something else entirely",
			want:       "",
		},
		{
			name:       "empty output",
			compositor: "Sway",
			out:        "",
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseVersionOutput(tt.compositor, tt.out); got != tt.want {
				t.Errorf("parseVersionOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfoHelpers(t *testing.T) {
	kde := &Info{SessionType: "wayland", CurrentDesktop: "KDE", Compositor: "KWin"}
	if !kde.IsWayland() || !kde.IsKDE() || kde.IsGNOME() || kde.IsWlroots() {
		t.Errorf("KDE wayland helpers wrong: %+v", kde)
	}

	sway := &Info{SessionType: "wayland", CurrentDesktop: "sway", Compositor: "Sway"}
	if !sway.IsWlroots() || sway.IsHyprland() || sway.IsKDE() {
		t.Errorf("sway helpers wrong: %+v", sway)
	}

	hypr := &Info{SessionType: "wayland", CurrentDesktop: "Hyprland", Compositor: "Hyprland"}
	if !hypr.IsHyprland() || !hypr.IsWlroots() {
		t.Errorf("hyprland helpers wrong: %+v", hypr)
	}

	x11 := &Info{SessionType: "x11", CurrentDesktop: "ubuntu:GNOME"}
	if x11.IsWayland() || !x11.IsX11() || !x11.IsGNOME() {
		t.Errorf("x11 gnome helpers wrong: %+v", x11)
	}
}

func TestSummary(t *testing.T) {
	env := &Info{
		SessionType:       "wayland",
		CurrentDesktop:    "sway",
		DesktopSession:    "sway",
		Compositor:        "Sway",
		CompositorVersion: "1.9",
	}

	summary := env.Summary()
	if !strings.Contains(summary, "Session Type: wayland") {
		t.Errorf("summary missing session type: %q", summary)
	}
	if !strings.Contains(summary, "Sway (1.9)") {
		t.Errorf("summary missing compositor version: %q", summary)
	}
	if strings.Contains(summary, "Desktop Session:") {
		t.Error("desktop session should be omitted when equal to desktop")
	}
}

func TestParseKeyValue(t *testing.T) {
	input := "NAME=\"Fedora Linux\"\nPRETTY_NAME=\"Fedora Linux 40\"\nINVALID LINE\nID=fedora\n"
	got, err := parseKeyValue(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseKeyValue() error: %v", err)
	}
	if got["PRETTY_NAME"] != "Fedora Linux 40" {
		t.Errorf("PRETTY_NAME = %q", got["PRETTY_NAME"])
	}
	if got["ID"] != "fedora" {
		t.Errorf("ID = %q", got["ID"])
	}
	if _, ok := got["INVALID LINE"]; ok {
		t.Error("lines without '=' must be skipped")
	}
}
