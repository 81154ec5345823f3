package sysctl

import (
	"errors"
	"fmt"

	"github.com/plexsphere/hostctl/internal/hostbus"
)

var (
	// ErrCapabilityUnavailable is returned when capability enforcement is
	// enabled and the operation's capability was probed absent.
	ErrCapabilityUnavailable = errors.New("sysctl: capability unavailable")

	// ErrUnsupported is returned by controllers that do not implement an operation.
	ErrUnsupported = errors.New("sysctl: operation not supported by backend")

	// ErrClosed is returned for operations on a closed controller.
	ErrClosed = errors.New("sysctl: controller closed")
)

// HostCallError reports a failed host service call.
type HostCallError struct {
	// Op is the controller operation, e.g. "reboot".
	Op string
	// Name is the D-Bus error name, empty for transport errors.
	Name string
	Err  error
}

func newHostCallError(op string, err error) *HostCallError {
	return &HostCallError{
		Op:   op,
		Name: hostbus.ErrorName(err),
		Err:  err,
	}
}

func (e *HostCallError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("sysctl: %s: %s: %s", e.Op, e.Name, hostbus.ErrorMessage(e.Err))
	}
	return fmt.Sprintf("sysctl: %s: %v", e.Op, e.Err)
}

func (e *HostCallError) Unwrap() error { return e.Err }
