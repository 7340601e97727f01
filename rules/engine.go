package rules

import (
	"fmt"
	"sort"

	"github.com/b0bbywan/go-portal-doctor/logger"
)

// Rule inspects the context and returns a finding, or nil when it does not
// apply.
type Rule struct {
	Name  string
	Check func(*Context) *Finding
}

var allRules = []Rule{
	{"x11_session", ruleX11Session},
	{"portal_service_not_running", rulePortalServiceNotRunning},
	{"no_backend_running", ruleNoBackendRunning},
	{"backend_mismatch", ruleBackendMismatch},
	{"multiple_backends_no_config", ruleMultipleBackendsNoConfig},
	{"pipewire_not_running", rulePipeWireNotRunning},
	{"no_session_manager", ruleNoSessionManager},
	{"legacy_pulseaudio", ruleLegacyPulseAudio},
	{"screencast_result", ruleScreenCastResult},
}

// Run evaluates every rule against the context. A panicking rule is reported
// as an informational finding and never aborts the run. Findings come back
// sorted errors first.
func Run(ctx *Context) []Finding {
	return run(ctx, allRules)
}

func run(ctx *Context, ruleSet []Rule) []Finding {
	var findings []Finding
	for _, rule := range ruleSet {
		if finding := evaluate(ctx, rule); finding != nil {
			findings = append(findings, *finding)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return severityOrder[findings[i].Severity] < severityOrder[findings[j].Severity]
	})
	return findings
}

func evaluate(ctx *Context, rule Rule) (finding *Finding) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("[rules] rule %s panicked: %v", rule.Name, r)
			finding = &Finding{
				ID:        fmt.Sprintf("rule_error_%s", rule.Name),
				Severity:  SeverityInfo,
				Title:     fmt.Sprintf("Diagnostic Rule Error: %s", rule.Name),
				Component: "Diagnostics",
				Details:   fmt.Sprintf("The %s rule failed while evaluating: %v", rule.Name, r),
				Evidence:  fmt.Sprintf("%v", r),
			}
		}
	}()
	return rule.Check(ctx)
}

// OverallStatus condenses the findings into a one-line verdict.
func OverallStatus(findings []Finding) (Severity, string) {
	hasError := false
	hasWarning := false
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			hasError = true
		case SeverityWarning:
			hasWarning = true
		}
	}

	switch {
	case hasError:
		return SeverityError, "Problems Found"
	case hasWarning:
		return SeverityWarning, "Warnings"
	default:
		return SeverityInfo, "Looks Good"
	}
}
