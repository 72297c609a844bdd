//go:build !profile

package prof

import (
	"io"
	"net/http"
)

// ErrCPUProfileActive is never returned without the "profile" tag.
var ErrCPUProfileActive error

// Enabled reports whether profiling is compiled in.
func Enabled() bool { return false }

// Register is a no-op.
func Register(_ *http.ServeMux) {}

// StartCPU is a no-op.
func StartCPU(_ string) error { return nil }

// StopCPU is a no-op.
func StopCPU() {}

// WriteGoroutines is a no-op.
func WriteGoroutines(_ io.Writer) error { return nil }
