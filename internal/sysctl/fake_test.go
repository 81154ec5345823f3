package sysctl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

// ---------------------------------------------------------------------------
// Fake host bus
// ---------------------------------------------------------------------------

type fakeCall struct {
	ep     hostbus.Endpoint
	method string
	args   []any
}

type fakeClient struct {
	mu       sync.Mutex
	calls    []fakeCall
	replies  map[string][]any
	errs     map[string]error
	props    map[string]dbus.Variant
	propErrs map[string]error
	reads    []string
	subErr   error
	subs     []*fakeSubscription
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		replies:  make(map[string][]any),
		errs:     make(map[string]error),
		props:    make(map[string]dbus.Variant),
		propErrs: make(map[string]error),
	}
}

// hostWithPowerAndTime returns a fake host where logind allows power-off and
// timedated answers pings.
func hostWithPowerAndTime() *fakeClient {
	f := newFakeClient()
	f.replies[hostbus.Login1.Member("CanPowerOff")] = []any{"yes"}
	return f
}

func (f *fakeClient) Call(_ context.Context, ep hostbus.Endpoint, method string, args ...any) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{ep: ep, method: method, args: args})
	member := ep.Member(method)
	if err := f.errs[member]; err != nil {
		return nil, err
	}
	return f.replies[member], nil
}

func (f *fakeClient) GetProperty(_ context.Context, ep hostbus.Endpoint, name string) (dbus.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, ep.Interface+"."+name)
	if err := f.propErrs[name]; err != nil {
		return dbus.Variant{}, err
	}
	return f.props[name], nil
}

func (f *fakeClient) SubscribePropertiesChanged(ep hostbus.Endpoint, fn hostbus.PropertiesChangedFunc) (hostbus.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	s := &fakeSubscription{path: ep.Path, fn: fn}
	f.subs = append(f.subs, s)
	return s, nil
}

// firePropertiesChanged delivers a PropertiesChanged signal to every open subscription.
func (f *fakeClient) firePropertiesChanged(iface string, changed map[string]dbus.Variant, invalidated []string) {
	f.mu.Lock()
	var targets []hostbus.PropertiesChangedFunc
	for _, s := range f.subs {
		if !s.isClosed() {
			targets = append(targets, s.fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range targets {
		fn(iface, changed, invalidated)
	}
}

func (f *fakeClient) callsTo(member string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.ep.Member(c.method) == member {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeClient) subscriptions() []*fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*fakeSubscription, len(f.subs))
	copy(out, f.subs)
	return out
}

type fakeSubscription struct {
	mu     sync.Mutex
	path   dbus.ObjectPath
	fn     hostbus.PropertiesChangedFunc
	closes int
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes > 0
}

func (s *fakeSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// notificationCounter counts change notifications.
type notificationCounter struct {
	mu    sync.Mutex
	count int
	ch    chan struct{}
}

func newNotificationCounter() *notificationCounter {
	return &notificationCounter{ch: make(chan struct{}, 16)}
}

func (n *notificationCounter) handle() {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
	n.ch <- struct{}{}
}

func (n *notificationCounter) get() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

var accessDenied = dbus.Error{
	Name: "org.freedesktop.DBus.Error.AccessDenied",
	Body: []any{"Permission denied"},
}
