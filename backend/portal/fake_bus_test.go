package portal

import (
	"context"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

// scriptedResponse describes what the fake portal does for one method.
type scriptedResponse struct {
	code    uint32
	results map[string]dbus.Variant
	noReply bool  // never announce a Response, forcing a timeout
	callErr error // fail the method call itself
}

// fakeBus is a scriptable Bus double. It delivers the Response signal
// synchronously from PortalCall, which is exactly the race the correlator
// must survive by arming its listener first.
type fakeBus struct {
	mu         sync.Mutex
	name       string
	responses  map[string]scriptedResponse
	propErr    error
	subs       []chan<- *dbus.Signal
	closeCount int
	log        []string // ordered record of match/call operations
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		name:      ":1.42",
		responses: map[string]scriptedResponse{},
	}
}

func (f *fakeBus) script(method string, r scriptedResponse) {
	f.responses[method] = r
}

func (f *fakeBus) connect(ctx context.Context) (Bus, error) {
	return f, nil
}

func (f *fakeBus) UniqueName() string { return f.name }

func (f *fakeBus) PortalProperty(name string) (dbus.Variant, error) {
	if f.propErr != nil {
		return dbus.Variant{}, f.propErr
	}
	return dbus.MakeVariant(uint32(4)), nil
}

func (f *fakeBus) PortalProperties() (map[string]dbus.Variant, error) {
	if f.propErr != nil {
		return nil, f.propErr
	}
	return map[string]dbus.Variant{
		"version":              dbus.MakeVariant(uint32(4)),
		"AvailableSourceTypes": dbus.MakeVariant(uint32(3)),
	}, nil
}

func (f *fakeBus) PortalCall(ctx context.Context, method string, args ...interface{}) (dbus.ObjectPath, error) {
	f.mu.Lock()
	f.log = append(f.log, "call:"+method)
	r := f.responses[method]
	f.mu.Unlock()

	if r.callErr != nil {
		return "", r.callErr
	}

	opts, _ := args[len(args)-1].(map[string]dbus.Variant)
	token, _ := opts["handle_token"].Value().(string)
	sender := strings.ReplaceAll(strings.TrimPrefix(f.name, ":"), ".", "_")
	path := dbus.ObjectPath(requestPathRoot + "/" + sender + "/" + token)

	if !r.noReply {
		f.deliver(path, r.code, r.results)
	}
	return path, nil
}

func (f *fakeBus) deliver(path dbus.ObjectPath, code uint32, results map[string]dbus.Variant) {
	sig := &dbus.Signal{
		Path: path,
		Name: responseMember,
		Body: []interface{}{code, results},
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

func (f *fakeBus) Subscribe(ch chan<- *dbus.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, ch)
}

func (f *fakeBus) Unsubscribe(ch chan<- *dbus.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subs {
		if sub == ch {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

func (f *fakeBus) AddResponseMatch(path dbus.ObjectPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "match:"+string(path))
	return nil
}

func (f *fakeBus) RemoveResponseMatch(path dbus.ObjectPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "unmatch:"+string(path))
	return nil
}

func (f *fakeBus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	return nil
}

func (f *fakeBus) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.log))
	copy(out, f.log)
	return out
}
