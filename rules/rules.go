package rules

import (
	"fmt"
	"strings"
)

const portalService = "xdg-desktop-portal.service"

var backendServices = []string{
	"xdg-desktop-portal-kde.service",
	"xdg-desktop-portal-gnome.service",
	"xdg-desktop-portal-gtk.service",
	"xdg-desktop-portal-wlr.service",
	"xdg-desktop-portal-hyprland.service",
}

func ruleX11Session(ctx *Context) *Finding {
	if ctx.Environment == nil || !ctx.Environment.IsX11() {
		return nil
	}
	return &Finding{
		ID:        "x11_session",
		Severity:  SeverityInfo,
		Title:     "Running on X11 Session",
		Component: "Session",
		Details: "This is an X11 session, not Wayland. Screen sharing on X11 works " +
			"differently and typically does not go through XDG portals; most " +
			"applications capture the screen directly. If screen sharing is broken " +
			"here, the portal stack is probably not the cause.",
		Evidence: fmt.Sprintf("XDG_SESSION_TYPE=%s", ctx.Environment.SessionType),
	}
}

func rulePortalServiceNotRunning(ctx *Context) *Finding {
	svc, ok := ctx.PortalStatuses[portalService]
	if !ok || svc.Running || svc.ActiveState == "active" {
		return nil
	}

	severity := SeverityWarning
	state := "inactive"
	if svc.Failed {
		severity = SeverityError
		state = "failed"
	}

	return &Finding{
		ID:        "portal_not_running",
		Severity:  severity,
		Title:     "XDG Desktop Portal Not Running",
		Component: "Portal Service",
		Details: "The xdg-desktop-portal service is not running. It brokers screen " +
			"sharing between applications and the compositor on Wayland; without " +
			"it, screen sharing fails in browsers, Discord, OBS and other apps.",
		Evidence: fmt.Sprintf("%s: %s", portalService, state),
		Suggestions: []Suggestion{
			{
				Label:       "Restart xdg-desktop-portal",
				Description: "Restart the portal service",
				Command:     "systemctl --user restart xdg-desktop-portal.service",
			},
			{
				Label:       "View portal logs",
				Description: "Inspect the portal service logs",
				Command:     "journalctl --user -xeu xdg-desktop-portal.service",
			},
		},
	}
}

func ruleNoBackendRunning(ctx *Context) *Finding {
	if ctx.Environment != nil && ctx.Environment.IsX11() {
		return nil
	}

	for _, name := range backendServices {
		if ctx.unitActive(ctx.PortalStatuses, name) {
			return nil
		}
	}

	if len(ctx.Backends) == 0 {
		return &Finding{
			ID:        "no_backend_installed",
			Severity:  SeverityError,
			Title:     "No Portal Backend Installed",
			Component: "Portal Backend",
			Details: "No XDG desktop portal backend is installed. A backend matching " +
				"the desktop environment is required for screen sharing:\n" +
				"  KDE Plasma:    xdg-desktop-portal-kde\n" +
				"  GNOME:         xdg-desktop-portal-gnome\n" +
				"  Sway/wlroots:  xdg-desktop-portal-wlr\n" +
				"  Hyprland:      xdg-desktop-portal-hyprland\n" +
				"  GTK fallback:  xdg-desktop-portal-gtk",
			Evidence: "no .portal files found in system directories",
			Suggestions: []Suggestion{
				{
					Label: "Install a portal backend",
					Description: "Install the backend package for this desktop; " +
						"package names vary by distribution",
				},
			},
		}
	}

	names := make([]string, 0, len(ctx.Backends))
	for _, b := range ctx.Backends {
		names = append(names, b.Name)
	}

	return &Finding{
		ID:        "no_backend_running",
		Severity:  SeverityError,
		Title:     "Portal Backend Not Running",
		Component: "Portal Backend",
		Details: fmt.Sprintf("A portal backend is installed but none is running. "+
			"Installed backends: %s. Screen sharing needs an active backend to "+
			"talk to the compositor.", strings.Join(names, ", ")),
		Evidence: "no backend services active",
		Suggestions: []Suggestion{
			{
				Label:       "Restart portal services",
				Description: "Restart xdg-desktop-portal to trigger backend activation",
				Command:     "systemctl --user restart xdg-desktop-portal.service",
			},
		},
	}
}

func expectedBackends(ctx *Context) []string {
	env := ctx.Environment
	if env == nil {
		return nil
	}
	switch {
	case env.IsKDE():
		return []string{"kde"}
	case env.IsGNOME():
		return []string{"gnome", "gtk"}
	case env.IsHyprland():
		return []string{"hyprland", "wlr"}
	case env.IsWlroots():
		return []string{"wlr", "hyprland"}
	}
	return nil
}

func ruleBackendMismatch(ctx *Context) *Finding {
	if ctx.Environment == nil || ctx.Environment.IsX11() {
		return nil
	}
	expected := expectedBackends(ctx)
	if expected == nil {
		return nil
	}
	if ctx.PortalsConfig == nil || ctx.PortalsConfig.DefaultBackend == "" {
		return nil
	}

	configured := strings.ToLower(ctx.PortalsConfig.DefaultBackend)
	for _, name := range expected {
		if configured == name {
			return nil
		}
	}

	expectedStr := strings.Join(expected, " or ")
	return &Finding{
		ID:        "backend_mismatch",
		Severity:  SeverityWarning,
		Title:     "Portal Backend Mismatch",
		Component: "Portal Configuration",
		Details: fmt.Sprintf("The desktop environment is %s but portals.conf "+
			"prefers the '%s' backend. For %s the %s backend should be used; a "+
			"mismatched backend can make screen sharing fail or show the wrong "+
			"picker dialog.", ctx.Environment.CurrentDesktop, configured,
			ctx.Environment.CurrentDesktop, expectedStr),
		Evidence: fmt.Sprintf("expected: %s, configured: %s", expectedStr, configured),
		Suggestions: []Suggestion{
			{
				Label: "Fix portals.conf",
				Description: fmt.Sprintf("Edit %s to set default=%s under [preferred]",
					ctx.PortalsConfig.FilePath, expected[0]),
			},
		},
	}
}

func ruleMultipleBackendsNoConfig(ctx *Context) *Finding {
	if ctx.Environment != nil && ctx.Environment.IsX11() {
		return nil
	}
	if len(ctx.Backends) <= 1 {
		return nil
	}
	if ctx.PortalsConfig != nil && ctx.PortalsConfig.DefaultBackend != "" {
		return nil
	}

	names := make([]string, 0, len(ctx.Backends))
	for _, b := range ctx.Backends {
		names = append(names, b.Name)
	}
	joined := strings.Join(names, ", ")

	suggestion := Suggestion{
		Label:       "Create portals.conf",
		Description: "Create ~/.config/xdg-desktop-portal/portals.conf with a [preferred] section",
	}
	if recommended := recommendedFor(ctx); recommended != "" {
		suggestion.Description = fmt.Sprintf(
			"Create ~/.config/xdg-desktop-portal/portals.conf with [preferred] default=%s",
			recommended)
	}

	return &Finding{
		ID:        "multiple_backends_no_config",
		Severity:  SeverityWarning,
		Title:     "Multiple Backends Without Configuration",
		Component: "Portal Configuration",
		Details: fmt.Sprintf("Multiple portal backends are installed (%s) but no "+
			"portals.conf selects one. The system may pick the wrong backend, "+
			"causing screen sharing failures or a foreign picker dialog.", joined),
		Evidence:    fmt.Sprintf("installed backends: %s, no portals.conf", joined),
		Suggestions: []Suggestion{suggestion},
	}
}

func rulePipeWireNotRunning(ctx *Context) *Finding {
	if ctx.Environment != nil && ctx.Environment.IsX11() {
		return nil
	}
	if ctx.unitActive(ctx.PipeWireStatuses, "pipewire.service") {
		return nil
	}

	evidence := "pipewire.service: not active"
	if svc, ok := ctx.PipeWireStatuses["pipewire.service"]; ok && svc.Failed {
		evidence = "pipewire.service: failed"
	}

	return &Finding{
		ID:        "pipewire_not_running",
		Severity:  SeverityError,
		Title:     "PipeWire Not Running",
		Component: "PipeWire",
		Details: "PipeWire is not running. Screen sharing on Wayland delivers video " +
			"streams through PipeWire; even a working portal picker produces no " +
			"frames without it.",
		Evidence: evidence,
		Suggestions: []Suggestion{
			{
				Label:       "Restart PipeWire",
				Description: "Restart the PipeWire service",
				Command:     "systemctl --user restart pipewire.service",
			},
			{
				Label:       "View PipeWire logs",
				Description: "Inspect the PipeWire service logs",
				Command:     "journalctl --user -xeu pipewire.service",
			},
		},
	}
}

func ruleNoSessionManager(ctx *Context) *Finding {
	if ctx.Environment != nil && ctx.Environment.IsX11() {
		return nil
	}
	if ctx.unitActive(ctx.PipeWireStatuses, "wireplumber.service") ||
		ctx.unitActive(ctx.PipeWireStatuses, "pipewire-media-session.service") {
		return nil
	}

	return &Finding{
		ID:        "no_session_manager",
		Severity:  SeverityWarning,
		Title:     "No PipeWire Session Manager Running",
		Component: "PipeWire",
		Details: "Neither wireplumber nor pipewire-media-session is running. The " +
			"session manager applies routing policy to PipeWire streams; screen " +
			"capture streams may not be connected without one.",
		Evidence: "neither wireplumber nor pipewire-media-session is active",
		Suggestions: []Suggestion{
			{
				Label:       "Restart WirePlumber",
				Description: "Restart the WirePlumber session manager",
				Command:     "systemctl --user restart wireplumber.service",
			},
		},
	}
}

func ruleLegacyPulseAudio(ctx *Context) *Finding {
	pw := ctx.PipeWire
	if pw == nil || !pw.SocketReachable || pw.IsPipeWire() {
		return nil
	}

	return &Finding{
		ID:        "legacy_pulseaudio",
		Severity:  SeverityWarning,
		Title:     "Legacy PulseAudio Server Detected",
		Component: "PipeWire",
		Details: fmt.Sprintf("The native audio socket is served by %s %s, not "+
			"PipeWire. Wayland screen sharing requires pipewire-pulse in place of "+
			"the classic PulseAudio daemon.", pw.ServerName, pw.ServerVersion),
		Evidence: fmt.Sprintf("server package: %s", pw.ServerName),
		Suggestions: []Suggestion{
			{
				Label: "Switch to pipewire-pulse",
				Description: "Install pipewire-pulse and disable the legacy " +
					"PulseAudio daemon",
			},
		},
	}
}
