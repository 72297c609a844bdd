// Package pkg provides shared utilities for the typecd daemon.
//
// This package contains common functionality used by every Type-C
// component, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for attribute, role and channel failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with a component attribute:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentRole, "role switched", "port", "port0")
//
// # Errors
//
// Failures are wrapped around sentinel values:
//
//	if errors.Is(err, pkg.ErrUnrecognizedRole) {
//	    // attribute held an unexpected token
//	}
package pkg
