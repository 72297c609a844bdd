// Package status builds and publishes port status snapshots.
//
// [Aggregator.Refresh] enumerates the ports, reads their roles and runs a
// fixed sequence of probes over the result:
//
//  1. contaminant (moisture) detection
//  2. power transfer limit
//  3. non-compliant charger reasons
//  4. data session compliance
//
// A failing read or probe only degrades the fields it owns. The overall
// status is an error only when the ports cannot be enumerated.
package status
