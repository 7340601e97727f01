package rules

import (
	"fmt"

	"github.com/b0bbywan/go-portal-doctor/backend/portal"
	"github.com/b0bbywan/go-portal-doctor/backend/portals"
)

// Rules over the screencast test result: the (step reached, error category)
// pair pins down where in the portal handshake the run died.

func recommendedFor(ctx *Context) string {
	if ctx.Environment == nil {
		return ""
	}
	return portals.RecommendedBackend(ctx.Environment, ctx.Backends)
}

func ruleScreenCastResult(ctx *Context) *Finding {
	result := ctx.ScreenCast
	if result == nil || result.Success {
		return nil
	}

	evidence := fmt.Sprintf("step=%s category=%s: %s",
		result.StepReached, result.ErrorCategory, result.ErrorMessage)

	switch result.ErrorCategory {
	case portal.CategoryUserCancelled:
		return &Finding{
			ID:        "screencast_cancelled",
			Severity:  SeverityInfo,
			Title:     "Screen Cast Test Cancelled",
			Component: "Screen Cast",
			Details: "The source picker dialog was dismissed. This is a normal " +
				"outcome, not a failure: the portal, backend and compositor all " +
				"responded correctly up to that point.",
			Evidence: evidence,
		}

	case portal.CategoryConnectionError:
		return &Finding{
			ID:        "screencast_no_bus",
			Severity:  SeverityError,
			Title:     "Cannot Reach the Session Bus",
			Component: "Screen Cast",
			Details: "Connecting to the D-Bus session bus failed, so the portal " +
				"could not even be contacted. This usually means DBUS_SESSION_BUS_ADDRESS " +
				"is unset or the run happened outside a desktop session.",
			Evidence: evidence,
			Suggestions: []Suggestion{
				{
					Label:       "Check the session bus",
					Description: "Verify a session bus is available",
					Command:     "dbus-send --session --print-reply --dest=org.freedesktop.DBus / org.freedesktop.DBus.ListNames",
				},
			},
		}

	case portal.CategoryInterfaceUnsupported:
		finding := &Finding{
			ID:        "screencast_unsupported",
			Severity:  SeverityError,
			Title:     "ScreenCast Interface Not Available",
			Component: "Screen Cast",
			Details: "The portal answered but does not expose the ScreenCast " +
				"interface. The active backend does not implement screen casting " +
				"for this compositor, which points at a wrong or missing backend.",
			Evidence: evidence,
		}
		if recommended := recommendedFor(ctx); recommended != "" {
			finding.Suggestions = append(finding.Suggestions, Suggestion{
				Label: "Configure the matching backend",
				Description: fmt.Sprintf("Prefer the %s backend in "+
					"~/.config/xdg-desktop-portal/portals.conf", recommended),
			})
		}
		finding.Suggestions = append(finding.Suggestions, Suggestion{
			Label:       "Restart portal services",
			Description: "Restart xdg-desktop-portal after changing the configuration",
			Command:     "systemctl --user restart xdg-desktop-portal.service",
		})
		return finding

	case portal.CategoryTimeout:
		return screenCastTimeout(result, evidence)

	case portal.CategoryMissingHandle:
		return &Finding{
			ID:        "screencast_malformed_response",
			Severity:  SeverityError,
			Title:     "Malformed Portal Response",
			Component: "Screen Cast",
			Details: fmt.Sprintf("The portal reported success at %s but its "+
				"response was missing the expected data. This is a bug or "+
				"protocol mismatch in the active backend.", result.StepReached),
			Evidence: evidence,
			Suggestions: []Suggestion{
				{
					Label:       "View portal logs",
					Description: "The backend may have logged the underlying error",
					Command:     "journalctl --user -xeu xdg-desktop-portal.service",
				},
			},
		}

	default:
		return &Finding{
			ID:        "screencast_failed",
			Severity:  SeverityError,
			Title:     fmt.Sprintf("Screen Cast Test Failed at %s", result.StepReached),
			Component: "Screen Cast",
			Details: fmt.Sprintf("The test run stopped at the %s step: %s",
				result.StepReached, result.ErrorMessage),
			Evidence: evidence,
			Suggestions: []Suggestion{
				{
					Label:       "View portal logs",
					Description: "Inspect the portal and backend logs around the failure",
					Command:     "journalctl --user -xeu xdg-desktop-portal.service",
				},
			},
		}
	}
}

func screenCastTimeout(result *portal.ScreenCastTestResult, evidence string) *Finding {
	switch result.StepReached {
	case portal.StepSelectSources:
		return &Finding{
			ID:        "screencast_picker_timeout",
			Severity:  SeverityError,
			Title:     "Source Picker Never Responded",
			Component: "Screen Cast",
			Details: "SelectSources timed out. Either the picker dialog never " +
				"appeared (backend hang, frequently a backend/compositor mismatch) " +
				"or it was left open without a choice being made.",
			Evidence: evidence,
			Suggestions: []Suggestion{
				{
					Label:       "Restart portal services",
					Description: "A hung backend is cleared by restarting the portal",
					Command:     "systemctl --user restart xdg-desktop-portal.service",
				},
			},
		}
	default:
		return &Finding{
			ID:        "screencast_timeout",
			Severity:  SeverityError,
			Title:     fmt.Sprintf("Portal Timed Out at %s", result.StepReached),
			Component: "Screen Cast",
			Details: fmt.Sprintf("No response arrived for the %s request. The "+
				"portal or its backend is not answering.", result.StepReached),
			Evidence: evidence,
			Suggestions: []Suggestion{
				{
					Label:       "Restart portal services",
					Description: "Restart xdg-desktop-portal and its backend",
					Command:     "systemctl --user restart xdg-desktop-portal.service",
				},
			},
		}
	}
}
