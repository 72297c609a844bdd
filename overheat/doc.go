// Package overheat reports USB port cooling device statistics.
//
// The cooling device exposes the time, in seconds, the port took to trip,
// to enter hysteresis and to clear. A [Reporter] reads them whenever the
// dispatch loop sees the cooling device change and exports them as metrics.
package overheat
