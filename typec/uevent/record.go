package uevent

import (
	"bytes"
	"strings"
)

// Record is one NUL-terminated line of a uevent datagram.
type Record string

// KeyValue splits a KEY=value record. ok is false for records without '=',
// such as the leading "action@devpath" header.
func (r Record) KeyValue() (key, value string, ok bool) {
	return strings.Cut(string(r), "=")
}

// HasPrefix reports whether the record starts with prefix.
func (r Record) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(r), prefix)
}

// Parse splits a datagram into records. Empty records are skipped.
func Parse(data []byte) []Record {
	var records []Record
	for _, line := range bytes.Split(data, []byte{0}) {
		if len(line) == 0 {
			continue
		}
		records = append(records, Record(line))
	}
	return records
}
