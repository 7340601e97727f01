package cli

import (
	"context"
	"fmt"

	"github.com/b0bbywan/go-portal-doctor/backend/portal"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/events"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// ScreenCastTest runs the live portal handshake and reports the classified
// outcome. User cancellation exits 0: closing the picker is not a failure.
func ScreenCastTest(ctx context.Context, cfg *config.Config, asJSON bool) int {
	result := runScreenCast(ctx, cfg, !asJSON)

	if asJSON {
		if err := writeJSON(result); err != nil {
			logger.Error("[cli] failed to encode result: %v", err)
			return 1
		}
	} else {
		renderResult(result)
	}

	if result.Success || result.Cancelled() {
		return 0
	}
	return 1
}

func runScreenCast(ctx context.Context, cfg *config.Config, render bool) *portal.ScreenCastTestResult {
	test := portal.New(cfg.ScreenCast)

	progress := make(chan events.Event, 16)
	test.Notify(progress)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			if !render || ev.Type != events.TypeScreenCastStep {
				continue
			}
			if step, ok := ev.Data.(portal.Step); ok {
				fmt.Println(stepStyle.Render("=> " + string(step)))
			}
		}
	}()

	result := test.Run(ctx)
	close(progress)
	<-done
	return result
}

func renderResult(result *portal.ScreenCastTestResult) {
	fmt.Println(titleStyle.Render("Screen Cast Test"))

	switch {
	case result.Success:
		fmt.Println(detailStyle.Render(okStyle.Render("success") +
			fmt.Sprintf("  stream node %d", result.NodeID)))
		if len(result.StreamProperties) > 0 {
			fmt.Println(detailStyle.Render(dimStyle.Render(fmt.Sprintf("properties: %v", result.StreamProperties))))
		}
	case result.Cancelled():
		fmt.Println(detailStyle.Render(warnStyle.Render("cancelled") +
			"  the picker dialog was dismissed"))
	default:
		fmt.Println(detailStyle.Render(errorStyle.Render("failed") +
			fmt.Sprintf("  at %s (%s)", result.StepReached, result.ErrorCategory)))
		fmt.Println(detailStyle.Render(result.ErrorMessage))
	}
	fmt.Println()
}
