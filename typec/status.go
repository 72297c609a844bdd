package typec

import (
	"errors"

	"github.com/ardnew/typecd/pkg"
)

// Status is the result code of a command or refresh.
type Status uint8

// Status values.
const (
	StatusSuccess Status = iota
	StatusError
	StatusInvalidArgument
	StatusUnrecognizedRole
	StatusNotSupported
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInvalidArgument:
		return "invalid_argument"
	case StatusUnrecognizedRole:
		return "unrecognized_role"
	case StatusNotSupported:
		return "not_supported"
	default:
		return "unknown"
	}
}

// StatusOf maps an error onto the status reported to a sink.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, pkg.ErrUnrecognizedRole):
		return StatusUnrecognizedRole
	case errors.Is(err, pkg.ErrInvalidRole), errors.Is(err, pkg.ErrInvalidParameter):
		return StatusInvalidArgument
	case errors.Is(err, pkg.ErrNotSupported):
		return StatusNotSupported
	default:
		return StatusError
	}
}
