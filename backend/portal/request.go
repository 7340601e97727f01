package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	dbusutil "github.com/b0bbywan/go-portal-doctor/backend/internal/dbus"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

// Correlator matches portal method calls to the Response signals announced
// on their request objects. Tokens are unique within one bus connection, so
// the correlator lives exactly as long as its Bus.
type Correlator struct {
	bus     Bus
	sender  string
	counter uint64
}

func NewCorrelator(bus Bus) *Correlator {
	return &Correlator{
		bus:    bus,
		sender: senderID(bus.UniqueName()),
	}
}

// senderID escapes a unique bus name (e.g. ":1.42") into the alphabet legal
// in a path segment: anything outside [A-Za-z0-9_] becomes '_'.
func senderID(unique string) string {
	trimmed := strings.TrimPrefix(unique, ":")
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, c := range trimmed {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (c *Correlator) nextToken() string {
	c.counter++
	return fmt.Sprintf("%s_%d", tokenPrefix, c.counter)
}

// requestPath derives the object path where the Response for token will be
// announced. Pure function of (sender, token): the remote side computes the
// same path from the handle_token option.
func (c *Correlator) requestPath(token string) dbus.ObjectPath {
	return dbus.ObjectPath(requestPathRoot + "/" + c.sender + "/" + token)
}

// CallAndAwait issues one portal method call and suspends until the Response
// signal fires on the predicted request path or the timeout elapses. args are
// the positional arguments preceding the options map (session handle, parent
// window); opts is extended with the handle_token.
//
// The listener is armed before the call goes out: the Response may arrive
// before the method reply.
func (c *Correlator) CallAndAwait(
	ctx context.Context,
	method string,
	opts map[string]dbus.Variant,
	timeout time.Duration,
	args ...interface{},
) (uint32, map[string]dbus.Variant, error) {
	token := c.nextToken()
	path := c.requestPath(token)

	callOpts := make(map[string]dbus.Variant, len(opts)+1)
	for k, v := range opts {
		callOpts[k] = v
	}
	callOpts["handle_token"] = dbus.MakeVariant(token)

	ch := make(chan *dbus.Signal, 4)
	c.bus.Subscribe(ch)
	defer c.bus.Unsubscribe(ch)

	if err := c.bus.AddResponseMatch(path); err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := c.bus.RemoveResponseMatch(path); err != nil {
			logger.Debug("[portal] failed to remove match for %s: %v", path, err)
		}
	}()

	accepted, err := c.bus.PortalCall(ctx, method, append(args, callOpts)...)
	if err != nil {
		return 0, nil, err
	}
	if accepted != "" && accepted != path {
		// Old portal versions return a different path; the predicted one is
		// still where the Response lands for current backends.
		logger.Debug("[portal] %s accepted as %s, awaiting %s", method, accepted, path)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case sig := <-ch:
			if sig == nil {
				return 0, nil, &dbusutil.SignalError{Reason: "signal channel closed"}
			}
			if sig.Path != path || sig.Name != responseMember {
				continue
			}
			return dbusutil.FilterResponse(sig)
		case <-timer.C:
			return 0, nil, &TimeoutError{Path: path}
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}
}
