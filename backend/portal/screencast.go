package portal

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	dbusutil "github.com/b0bbywan/go-portal-doctor/backend/internal/dbus"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/events"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// New creates a screencast test bound to the real session bus.
func New(cfg *config.ScreenCastConfig) *ScreenCastTest {
	return &ScreenCastTest{
		cfg:     cfg,
		connect: Connect,
	}
}

// Notify sets an optional channel receiving step and result events.
func (t *ScreenCastTest) Notify(ch chan<- events.Event) {
	t.events = ch
}

// Run executes the full flow and always returns a result; every failure is
// converted at its step boundary, nothing escapes as an error.
func (t *ScreenCastTest) Run(ctx context.Context) *ScreenCastTestResult {
	t.step(StepConnect)
	bus, err := t.connect(ctx)
	if err != nil {
		return t.finish(classify(StepConnect, &ConnectionError{Err: err}))
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Warn("[portal] failed to close bus connection: %v", err)
		}
	}()

	return t.finish(t.run(ctx, bus))
}

func (t *ScreenCastTest) run(ctx context.Context, bus Bus) *ScreenCastTestResult {
	t.step(StepGetPortal)
	if err := t.checkPortal(bus); err != nil {
		return classify(StepGetPortal, err)
	}

	corr := NewCorrelator(bus)

	t.step(StepCreateSession)
	sessionOpts := map[string]dbus.Variant{
		"session_handle_token": dbus.MakeVariant(corr.nextToken()),
	}
	code, results, err := corr.CallAndAwait(ctx, "CreateSession", sessionOpts, t.cfg.CreateSessionTimeout)
	if err != nil {
		return classify(StepCreateSession, err)
	}
	// CreateSession shows no dialog; any non-zero code is a remote failure.
	if code != responseSuccess {
		return classify(StepCreateSession, &RemoteError{
			Code:    code,
			Message: fmt.Sprintf("CreateSession returned code %d", code),
		})
	}

	session, err := sessionHandle(results)
	if err != nil {
		return classify(StepCreateSession, err)
	}
	logger.Debug("[portal] session created: %s", session)

	t.step(StepSelectSources)
	sourceOpts := map[string]dbus.Variant{
		"types":    dbus.MakeVariant(uint32(SourceMonitor | SourceWindow)),
		"multiple": dbus.MakeVariant(false),
	}
	code, _, err = corr.CallAndAwait(ctx, "SelectSources", sourceOpts, t.cfg.SelectSourcesTimeout, session)
	if err != nil {
		return classify(StepSelectSources, err)
	}
	switch code {
	case responseSuccess:
	case responseCancelled:
		return cancelled(StepSelectSources, "user cancelled the source selection")
	default:
		return classify(StepSelectSources, &RemoteError{
			Code:    code,
			Message: fmt.Sprintf("SelectSources returned code %d", code),
		})
	}

	t.step(StepStart)
	// Empty string: no parent window to attach the dialog to.
	code, results, err = corr.CallAndAwait(ctx, "Start", map[string]dbus.Variant{}, t.cfg.StartTimeout, session, "")
	if err != nil {
		return classify(StepStart, err)
	}
	switch code {
	case responseSuccess:
	case responseCancelled:
		return cancelled(StepStart, "user cancelled the start request")
	default:
		return classify(StepStart, &RemoteError{
			Code:    code,
			Message: fmt.Sprintf("Start returned code %d", code),
		})
	}

	node, props, err := firstStream(results)
	if err != nil {
		return classify(StepStart, err)
	}

	return &ScreenCastTestResult{
		Success:          true,
		StepReached:      StepComplete,
		NodeID:           node,
		StreamProperties: props,
		LogExcerpt:       fmt.Sprintf("obtained stream with pipewire node id %d", node),
	}
}

// checkPortal resolves the ScreenCast interface by reading its properties.
func (t *ScreenCastTest) checkPortal(bus Bus) error {
	version, err := bus.PortalProperty("version")
	if err != nil {
		return err
	}
	logger.Debug("[portal] screencast interface version: %v", version.Value())

	props, err := bus.PortalProperties()
	if err != nil {
		// version already proved the interface exists
		logger.Debug("[portal] failed to list interface properties: %v", err)
		return nil
	}
	for _, name := range dbusutil.Keys(props) {
		if !dbusutil.ValidMemberName(name) {
			logger.Warn("[portal] ignoring property with invalid name %q", name)
		}
	}
	return nil
}

func (t *ScreenCastTest) step(s Step) {
	logger.Debug("[portal] step %s", s)
	events.Emit(t.events, events.Event{Type: events.TypeScreenCastStep, Data: s})
}

func (t *ScreenCastTest) finish(r *ScreenCastTestResult) *ScreenCastTestResult {
	if r.Success {
		logger.Info("[portal] screencast test passed: %s", r.LogExcerpt)
	} else {
		logger.Info("[portal] screencast test stopped at %s: %s (%s)", r.StepReached, r.ErrorCategory, r.ErrorMessage)
	}
	events.Emit(t.events, events.Event{Type: events.TypeScreenCastResult, Data: r})
	return r
}
