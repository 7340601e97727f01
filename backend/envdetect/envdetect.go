package envdetect

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/b0bbywan/go-portal-doctor/logger"
)

const osReleaseFile = "/etc/os-release"

const (
	pidofTimeout   = 2 * time.Second
	versionTimeout = 5 * time.Second
)

// Detect inspects the environment and the process list to describe the
// current desktop session.
func Detect() *Info {
	compositor := detectCompositor()
	return &Info{
		SessionType:       detectSessionType(),
		CurrentDesktop:    detectCurrentDesktop(),
		DesktopSession:    os.Getenv("DESKTOP_SESSION"),
		Compositor:        compositor,
		CompositorVersion: detectCompositorVersion(compositor),
		OSVersion:         readOSRelease(),
	}
}

func detectSessionType() string {
	sessionType := strings.ToLower(os.Getenv("XDG_SESSION_TYPE"))
	switch sessionType {
	case "wayland", "x11", "tty":
		return sessionType
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "wayland"
	}
	if os.Getenv("DISPLAY") != "" {
		return "x11"
	}
	return Unknown
}

func detectCurrentDesktop() string {
	// XDG_CURRENT_DESKTOP may hold several values separated by ':'
	if desktop := os.Getenv("XDG_CURRENT_DESKTOP"); desktop != "" {
		return desktop
	}
	if session := os.Getenv("DESKTOP_SESSION"); session != "" {
		return session
	}
	if os.Getenv("KDE_FULL_SESSION") != "" {
		return "KDE"
	}
	if os.Getenv("GNOME_DESKTOP_SESSION_ID") != "" {
		return "GNOME"
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "Hyprland"
	}
	if os.Getenv("SWAYSOCK") != "" {
		return "sway"
	}
	return Unknown
}

var knownCompositors = []struct {
	process string
	name    string
}{
	{"kwin_wayland", "KWin"},
	{"sway", "Sway"},
	{"Hyprland", "Hyprland"},
	{"hyprland", "Hyprland"},
	{"gnome-shell", "GNOME Shell"},
	{"river", "River"},
	{"wayfire", "Wayfire"},
}

func detectCompositor() string {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "Hyprland"
	}
	if os.Getenv("SWAYSOCK") != "" {
		return "Sway"
	}
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	if strings.Contains(desktop, "kde") || strings.Contains(desktop, "plasma") {
		return "KWin"
	}
	if strings.Contains(desktop, "gnome") {
		return "GNOME Shell"
	}

	for _, c := range knownCompositors {
		if processRunning(c.process) {
			return c.name
		}
	}
	return ""
}

func processRunning(name string) bool {
	out, err := runCommand(pidofTimeout, "pidof", name)
	return err == nil && strings.TrimSpace(out) != ""
}

var versionCommands = map[string][]string{
	"Sway":        {"sway", "--version"},
	"Hyprland":    {"hyprctl", "version"},
	"KWin":        {"kwin_wayland", "--version"},
	"GNOME Shell": {"gnome-shell", "--version"},
}

func detectCompositorVersion(compositor string) string {
	cmd, ok := versionCommands[compositor]
	if !ok {
		return ""
	}

	out, err := runCommand(versionTimeout, cmd[0], cmd[1:]...)
	if err != nil {
		logger.Debug("[envdetect] %s version probe failed: %v", compositor, err)
		return ""
	}
	return parseVersionOutput(compositor, out)
}

// parseVersionOutput extracts the version number from a version command's
// output. Most compositors print it as the last word of a single line;
// hyprctl prints several lines with the version on its own line.
func parseVersionOutput(compositor, out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	if compositor == "Hyprland" {
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(strings.ToLower(line), "version") {
				fields := strings.Fields(line)
				if len(fields) > 0 {
					return fields[len(fields)-1]
				}
			}
		}
		return ""
	}
	fields := strings.Fields(out)
	return fields[len(fields)-1]
}

func runCommand(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseKeyValue(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"`)
	}

	return out, scanner.Err()
}

func readOSRelease() string {
	file, err := os.Open(osReleaseFile)
	if err != nil {
		return Unknown
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("[envdetect] failed to close %s: %v", osReleaseFile, err)
		}
	}()

	content, err := parseKeyValue(file)
	if err != nil {
		logger.Debug("[envdetect] failed to parse %s: %v", osReleaseFile, err)
	}

	switch {
	case content["PRETTY_NAME"] != "":
		return content["PRETTY_NAME"]
	case content["NAME"] != "":
		return content["NAME"]
	default:
		return Unknown
	}
}
