package hostbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// DBusClient implements Client on a system bus connection.
type DBusClient struct {
	cfg     Config
	conn    *dbus.Conn
	signals chan *dbus.Signal
	router  *signalRouter
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the system bus and returns a ready DBusClient.
func Dial(cfg Config, logger *slog.Logger) (*DBusClient, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("hostbus: connect system bus: %w", err)
	}
	return NewDBusClient(conn, cfg, logger), nil
}

// NewDBusClient wraps an established connection. The client takes ownership
// of conn and closes it in Close.
func NewDBusClient(conn *dbus.Conn, cfg Config, logger *slog.Logger) *DBusClient {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	lg := logger.With("component", "hostbus")
	c := &DBusClient{
		cfg:     cfg,
		conn:    conn,
		signals: make(chan *dbus.Signal, cfg.SignalBuffer),
		router:  newSignalRouter(lg),
		logger:  lg,
		done:    make(chan struct{}),
	}
	conn.Signal(c.signals)
	go c.deliver()
	return c
}

// Call invokes method on ep. The call is bounded by the configured call timeout.
func (c *DBusClient) Call(ctx context.Context, ep Endpoint, method string, args ...any) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	call := c.conn.Object(ep.Service, ep.Path).CallWithContext(ctx, ep.Member(method), 0, args...)
	if call.Err != nil {
		return nil, fmt.Errorf("hostbus: call %s on %s: %w", ep.Member(method), ep.Path, call.Err)
	}
	return call.Body, nil
}

// GetProperty reads property name of ep's interface through org.freedesktop.DBus.Properties.
func (c *DBusClient) GetProperty(ctx context.Context, ep Endpoint, name string) (dbus.Variant, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var v dbus.Variant
	err := c.conn.Object(ep.Service, ep.Path).
		CallWithContext(ctx, propertiesInterface+".Get", 0, ep.Interface, name).
		Store(&v)
	if err != nil {
		return dbus.Variant{}, fmt.Errorf("hostbus: get property %s.%s: %w", ep.Interface, name, err)
	}
	return v, nil
}

// SubscribePropertiesChanged adds a match rule for PropertiesChanged on ep's
// object path and routes matching signals to fn.
func (c *DBusClient) SubscribePropertiesChanged(ep Endpoint, fn PropertiesChangedFunc) (Subscription, error) {
	opts := propertiesMatch(ep)
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return nil, fmt.Errorf("hostbus: add match for %s: %w", ep.Path, err)
	}
	id := c.router.add(ep.Path, fn)
	c.logger.Debug("subscribed to property changes", "path", ep.Path)
	return &dbusSubscription{
		remove: func() error {
			c.router.remove(id)
			if err := c.conn.RemoveMatchSignal(opts...); err != nil {
				return fmt.Errorf("hostbus: remove match for %s: %w", ep.Path, err)
			}
			return nil
		},
	}, nil
}

// Close closes the bus connection and waits for signal delivery to stop.
func (c *DBusClient) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
		<-c.done
	})
	return c.closeErr
}

// deliver routes incoming signals until the connection closes the channel.
func (c *DBusClient) deliver() {
	defer close(c.done)
	for sig := range c.signals {
		c.router.dispatch(sig)
	}
}

// propertiesMatch restricts delivery to signals sent by the owner of
// ep.Service. The bus resolves the well-known name to its current owner.
func propertiesMatch(ep Endpoint) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchSender(ep.Service),
		dbus.WithMatchObjectPath(ep.Path),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
}

type dbusSubscription struct {
	once   sync.Once
	remove func() error
	err    error
}

func (s *dbusSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.remove()
	})
	return s.err
}

// signalRouter fans PropertiesChanged signals out to subscribers by object path.
type signalRouter struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]routedSub
	logger *slog.Logger
}

type routedSub struct {
	path dbus.ObjectPath
	fn   PropertiesChangedFunc
}

func newSignalRouter(logger *slog.Logger) *signalRouter {
	return &signalRouter{
		subs:   make(map[uint64]routedSub),
		logger: logger,
	}
}

func (r *signalRouter) add(path dbus.ObjectPath, fn PropertiesChangedFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.subs[r.nextID] = routedSub{path: path, fn: fn}
	return r.nextID
}

func (r *signalRouter) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

func (r *signalRouter) dispatch(sig *dbus.Signal) {
	if sig == nil || sig.Name != propertiesChanged {
		return
	}
	iface, changed, invalidated, err := decodePropertiesChanged(sig.Body)
	if err != nil {
		r.logger.Warn("malformed PropertiesChanged signal", "path", sig.Path, "error", err)
		return
	}

	r.mu.Lock()
	var targets []PropertiesChangedFunc
	for _, s := range r.subs {
		if s.path == sig.Path {
			targets = append(targets, s.fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range targets {
		fn(iface, changed, invalidated)
	}
}

// decodePropertiesChanged unpacks the (s a{sv} as) body of a PropertiesChanged signal.
func decodePropertiesChanged(body []any) (string, map[string]dbus.Variant, []string, error) {
	if len(body) != 3 {
		return "", nil, nil, fmt.Errorf("hostbus: PropertiesChanged: want 3 arguments, got %d", len(body))
	}
	iface, ok := body[0].(string)
	if !ok {
		return "", nil, nil, fmt.Errorf("hostbus: PropertiesChanged: interface name is %T", body[0])
	}
	changed, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", nil, nil, fmt.Errorf("hostbus: PropertiesChanged: changed properties is %T", body[1])
	}
	invalidated, ok := body[2].([]string)
	if !ok {
		return "", nil, nil, fmt.Errorf("hostbus: PropertiesChanged: invalidated properties is %T", body[2])
	}
	return iface, changed, invalidated, nil
}
