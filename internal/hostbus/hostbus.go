// Package hostbus provides the host service call primitive used by the
// system controller. Calls are addressed to a (service, object, interface)
// endpoint on the system D-Bus.
package hostbus

import (
	"context"
	"errors"

	"github.com/godbus/dbus/v5"
)

// Endpoint identifies a host service object and the interface to address.
type Endpoint struct {
	Service   string
	Path      dbus.ObjectPath
	Interface string
}

// Member returns the fully qualified member name for method on the endpoint's interface.
func (e Endpoint) Member(method string) string {
	return e.Interface + "." + method
}

// Well-known host service endpoints.
var (
	// Login1 is the logind manager (power service).
	Login1 = Endpoint{
		Service:   "org.freedesktop.login1",
		Path:      "/org/freedesktop/login1",
		Interface: "org.freedesktop.login1.Manager",
	}

	// Timedate1 is the timedated service (time service).
	Timedate1 = Endpoint{
		Service:   "org.freedesktop.timedate1",
		Path:      "/org/freedesktop/timedate1",
		Interface: "org.freedesktop.timedate1",
	}

	// Timedate1Peer addresses the generic peer interface of timedated for reachability checks.
	Timedate1Peer = Endpoint{
		Service:   "org.freedesktop.timedate1",
		Path:      "/org/freedesktop/timedate1",
		Interface: "org.freedesktop.DBus.Peer",
	}

	// Systemd1Manager is the systemd manager object.
	Systemd1Manager = Endpoint{
		Service:   "org.freedesktop.systemd1",
		Path:      "/org/freedesktop/systemd1",
		Interface: "org.freedesktop.systemd1.Manager",
	}
)

// Systemd1Unit returns the endpoint for the systemd unit object at path.
func Systemd1Unit(path dbus.ObjectPath) Endpoint {
	return Endpoint{
		Service:   "org.freedesktop.systemd1",
		Path:      path,
		Interface: "org.freedesktop.systemd1.Unit",
	}
}

const (
	propertiesInterface = "org.freedesktop.DBus.Properties"
	propertiesChanged   = propertiesInterface + ".PropertiesChanged"
)

// PropertiesChangedFunc receives the payload of a PropertiesChanged signal.
type PropertiesChangedFunc func(iface string, changed map[string]dbus.Variant, invalidated []string)

// Subscription is a live registration for host signals.
type Subscription interface {
	// Close releases the subscription. It is safe to call more than once.
	Close() error
}

// Client synchronously invokes methods and reads properties on host services.
// Implementations must be safe for concurrent use.
type Client interface {
	// Call invokes method on ep with args and returns the reply body.
	Call(ctx context.Context, ep Endpoint, method string, args ...any) ([]any, error)

	// GetProperty reads a single property of ep's interface.
	GetProperty(ctx context.Context, ep Endpoint, name string) (dbus.Variant, error)

	// SubscribePropertiesChanged registers fn for PropertiesChanged signals
	// emitted on the object path of ep.
	SubscribePropertiesChanged(ep Endpoint, fn PropertiesChangedFunc) (Subscription, error)
}

// ErrorName returns the D-Bus error name carried by err, or "" if err is not
// a D-Bus error reply.
func ErrorName(err error) string {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) && dbusErrPtr != nil {
		return dbusErrPtr.Name
	}
	return ""
}

// ErrorMessage returns the human-readable message of a D-Bus error reply, or
// err.Error() for any other error.
func ErrorMessage(err error) string {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return errorBodyMessage(dbusErr)
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) && dbusErrPtr != nil {
		return errorBodyMessage(*dbusErrPtr)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func errorBodyMessage(e dbus.Error) string {
	if len(e.Body) > 0 {
		if msg, ok := e.Body[0].(string); ok {
			return msg
		}
	}
	return e.Name
}
