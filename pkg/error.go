package pkg

import "errors"

// Attribute and role errors.
var (
	// ErrIO indicates a sysfs attribute could not be opened, read or written.
	ErrIO = errors.New("attribute I/O failed")

	// ErrUnrecognizedRole indicates a role attribute held a token that is
	// neither a known role nor "none".
	ErrUnrecognizedRole = errors.New("unrecognized role")

	// ErrEnumeration indicates the Type-C port list could not be read.
	ErrEnumeration = errors.New("port enumeration failed")

	// ErrNoPort indicates the named port does not exist.
	ErrNoPort = errors.New("port not present")

	// ErrInvalidRole indicates a role request carries no writable value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrBusy indicates the kernel rejected a write because the port is busy.
	ErrBusy = errors.New("resource busy")

	// ErrTimeout indicates a confirmation did not arrive in time.
	ErrTimeout = errors.New("confirmation timeout")

	// ErrMismatch indicates a read-back value differs from the written one.
	ErrMismatch = errors.New("read-back mismatch")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Lifecycle and notification channel errors.
var (
	// ErrAlreadyRunning indicates a component is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNotRunning indicates a component is not running.
	ErrNotRunning = errors.New("not running")

	// ErrWaitFailed indicates a readiness wait failed and the channel can no
	// longer be used.
	ErrWaitFailed = errors.New("wait failed")

	// ErrInterrupted indicates a blocking wait was woken on request.
	ErrInterrupted = errors.New("wait interrupted")

	// ErrClosed indicates the resource has been closed.
	ErrClosed = errors.New("closed")

	// ErrOverflow indicates a notification did not fit the receive buffer.
	ErrOverflow = errors.New("notification overflow")

	// ErrForeignSender indicates a notification did not originate from the kernel.
	ErrForeignSender = errors.New("notification not from kernel")

	// ErrStopTimeout indicates a background loop did not exit in time.
	ErrStopTimeout = errors.New("stop timeout")
)
