package dispatcher

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Fault is a logical error reported by the dispatcher: the remote procedure
// executed but rejected the call. Faults are never retried by the resilience
// layer because repeating a logically rejected call cannot succeed.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("dispatcher fault %d: %s", f.Code, f.Message)
}

// ConnectivityError is a transport-level failure: the call may or may not
// have reached the dispatcher. These are always retryable.
type ConnectivityError struct {
	Reason string // short classification used in logs
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("dispatcher unreachable (%s): %v", e.Reason, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is a transport-level failure that the
// resilience layer should absorb.
func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// classify wraps a transport error with its connectivity classification.
// The buckets mirror the failure modes seen in the field: unresolvable
// dispatcher address, refused or reset connections, timeouts, and any other
// I/O failure on the wire.
func classify(err error) *ConnectivityError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ConnectivityError{Reason: "name resolution failed", Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &ConnectivityError{Reason: "connection refused", Err: err}
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return &ConnectivityError{Reason: "connection reset", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ConnectivityError{Reason: "timeout", Err: err}
	}
	return &ConnectivityError{Reason: "i/o failure", Err: err}
}
