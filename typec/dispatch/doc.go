// Package dispatch drains kernel uevents and routes them to the status
// aggregator, the role switch coordinator and overheat telemetry.
//
// A [Loop] owns one goroutine and one [Receiver]. Each datagram is split
// into records and every record is classified by a [Classifier]; the first
// matching rule wins. A status-changing record triggers a refresh followed
// by a dual-role sweep of disconnected ports, and ends processing of the
// datagram.
package dispatch
