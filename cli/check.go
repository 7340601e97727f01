package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/b0bbywan/go-portal-doctor/backend/envdetect"
	"github.com/b0bbywan/go-portal-doctor/backend/pipewire"
	"github.com/b0bbywan/go-portal-doctor/backend/portal"
	"github.com/b0bbywan/go-portal-doctor/backend/portals"
	"github.com/b0bbywan/go-portal-doctor/backend/services"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/logger"
	"github.com/b0bbywan/go-portal-doctor/rules"
)

// checkReport is the JSON shape of a full diagnostic run.
type checkReport struct {
	Environment *envdetect.Info              `json:"environment"`
	Backends    []portals.Backend            `json:"backends"`
	Portals     map[string]services.Status   `json:"portal_services,omitempty"`
	PipeWire    map[string]services.Status   `json:"pipewire_services,omitempty"`
	Config      *portals.Config              `json:"portals_config,omitempty"`
	Probe       *pipewire.Info               `json:"pipewire_probe,omitempty"`
	ScreenCast  *portal.ScreenCastTestResult `json:"screencast,omitempty"`
	Findings    []rules.Finding              `json:"findings"`
	Status      string                       `json:"status"`
}

// Check gathers every probe, evaluates the rules and renders the findings.
// The exit code is 1 when error-severity findings remain, 0 otherwise.
func Check(ctx context.Context, cfg *config.Config, withScreenCast, asJSON bool) int {
	rulesCtx := gather(ctx, cfg)

	if withScreenCast {
		rulesCtx.ScreenCast = runScreenCast(ctx, cfg, !asJSON)
	}

	findings := rules.Run(rulesCtx)
	severity, status := rules.OverallStatus(findings)

	if asJSON {
		report := checkReport{
			Environment: rulesCtx.Environment,
			Backends:    rulesCtx.Backends,
			Portals:     rulesCtx.PortalStatuses,
			PipeWire:    rulesCtx.PipeWireStatuses,
			Config:      rulesCtx.PortalsConfig,
			Probe:       rulesCtx.PipeWire,
			ScreenCast:  rulesCtx.ScreenCast,
			Findings:    findings,
			Status:      status,
		}
		if err := writeJSON(report); err != nil {
			logger.Error("[cli] failed to encode report: %v", err)
			return 1
		}
	} else {
		renderCheck(rulesCtx, findings, severity, status)
	}

	if severity == rules.SeverityError {
		return 1
	}
	return 0
}

func gather(ctx context.Context, cfg *config.Config) *rules.Context {
	rulesCtx := &rules.Context{
		Environment: envdetect.Detect(),
		Backends:    portals.DiscoverBackends(),
	}

	backend, err := services.New(ctx, cfg.Services)
	if err != nil {
		logger.Warn("[cli] systemd unavailable, skipping service checks: %v", err)
	} else if backend != nil {
		defer backend.Close()
		if err := backend.Start(); err != nil {
			logger.Warn("[cli] failed to load unit statuses: %v", err)
		}
		if rulesCtx.PortalStatuses, err = backend.PortalStatuses(); err != nil {
			logger.Warn("[cli] failed to query portal units: %v", err)
		}
		if rulesCtx.PipeWireStatuses, err = backend.PipeWireStatuses(); err != nil {
			logger.Warn("[cli] failed to query pipewire units: %v", err)
		}
	}

	if rulesCtx.PortalsConfig, err = portals.ReadConfig(""); err != nil {
		logger.Warn("[cli] failed to read portals.conf: %v", err)
	}

	rulesCtx.PipeWire = pipewire.Probe(cfg.PipeWire)
	return rulesCtx
}

func renderCheck(rulesCtx *rules.Context, findings []rules.Finding, severity rules.Severity, status string) {
	fmt.Println(titleStyle.Render("Environment"))
	fmt.Println(detailStyle.Render(rulesCtx.Environment.Summary()))
	fmt.Println()

	if len(rulesCtx.Backends) > 0 {
		fmt.Println(titleStyle.Render("Installed Portal Backends"))
		for _, b := range rulesCtx.Backends {
			line := b.Name
			if len(b.UseIn) > 0 {
				line += dimStyle.Render(fmt.Sprintf("  (UseIn: %v)", b.UseIn))
			}
			fmt.Println(detailStyle.Render(line))
		}
		fmt.Println()
	}

	renderServices("Portal Services", rulesCtx.PortalStatuses)
	renderServices("PipeWire Services", rulesCtx.PipeWireStatuses)

	if probe := rulesCtx.PipeWire; probe != nil && probe.SocketReachable {
		fmt.Println(titleStyle.Render("Audio/Video Server"))
		fmt.Println(detailStyle.Render(fmt.Sprintf("%s %s", probe.ServerName, probe.ServerVersion)))
		fmt.Println()
	}

	if rulesCtx.ScreenCast != nil {
		renderResult(rulesCtx.ScreenCast)
	}

	fmt.Println(titleStyle.Render("Findings"))
	if len(findings) == 0 {
		fmt.Println(detailStyle.Render(okStyle.Render("no issues detected")))
	}
	for _, f := range findings {
		fmt.Printf("  %s %s %s\n", severityBadge(f.Severity), titleStyle.Render(f.Title),
			dimStyle.Render("["+f.Component+"]"))
		fmt.Println(detailStyle.Render(f.Details))
		if f.Evidence != "" {
			fmt.Println(detailStyle.Render(dimStyle.Render("evidence: " + f.Evidence)))
		}
		for _, s := range f.Suggestions {
			line := "-> " + s.Label
			if s.Description != "" {
				line += ": " + s.Description
			}
			fmt.Println(detailStyle.Render(line))
			if s.Command != "" {
				fmt.Println(detailStyle.Render(detailStyle.Render(commandStyle.Render("$ " + s.Command))))
			}
		}
		fmt.Println()
	}

	badge := okStyle
	if severity == rules.SeverityError {
		badge = errorStyle
	} else if severity == rules.SeverityWarning {
		badge = warnStyle
	}
	fmt.Println(badge.Render(status))
}

func renderServices(title string, statuses map[string]services.Status) {
	if len(statuses) == 0 {
		return
	}
	fmt.Println(titleStyle.Render(title))
	for _, name := range services.SortedNames(statuses) {
		svc := statuses[name]
		fmt.Println(detailStyle.Render(fmt.Sprintf("%-42s %s", name, serviceState(svc))))
	}
	fmt.Println()
}

func serviceState(svc services.Status) string {
	switch {
	case svc.Running:
		return okStyle.Render("running")
	case svc.Failed:
		return errorStyle.Render("failed")
	case svc.ActiveState == "active":
		return okStyle.Render("active")
	case !svc.Exists:
		return dimStyle.Render("not installed")
	default:
		return warnStyle.Render(svc.ActiveState)
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
