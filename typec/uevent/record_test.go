package uevent

import (
	"testing"
)

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse(t *testing.T) {
	data := []byte(
		"add@/devices/platform/soc/typec/port0/port0-partner\x00" +
			"ACTION=add\x00" +
			"DEVPATH=/devices/platform/soc/typec/port0/port0-partner\x00" +
			"SUBSYSTEM=typec\x00" +
			"DEVTYPE=typec_partner\x00",
	)

	records := Parse(data)

	want := []Record{
		"add@/devices/platform/soc/typec/port0/port0-partner",
		"ACTION=add",
		"DEVPATH=/devices/platform/soc/typec/port0/port0-partner",
		"SUBSYSTEM=typec",
		"DEVTYPE=typec_partner",
	}
	if len(records) != len(want) {
		t.Fatalf("Parse returned %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %q, want %q", i, records[i], want[i])
		}
	}
}

func TestParse_Empty(t *testing.T) {
	if records := Parse(nil); len(records) != 0 {
		t.Errorf("Parse(nil) = %v, want empty", records)
	}
	if records := Parse([]byte("\x00\x00")); len(records) != 0 {
		t.Errorf("Parse(NULs) = %v, want empty", records)
	}
}

func TestParse_NoTrailingNUL(t *testing.T) {
	records := Parse([]byte("ACTION=change\x00POWER_SUPPLY_NAME=usb"))
	if len(records) != 2 || records[1] != "POWER_SUPPLY_NAME=usb" {
		t.Errorf("Parse = %q", records)
	}
}

// =============================================================================
// Record Tests
// =============================================================================

func TestRecord_KeyValue(t *testing.T) {
	tests := []struct {
		record Record
		key    string
		value  string
		ok     bool
	}{
		{"DRIVER=max77759tcpc", "DRIVER", "max77759tcpc", true},
		{"POWER_SUPPLY_NAME=usb", "POWER_SUPPLY_NAME", "usb", true},
		{"EMPTY=", "EMPTY", "", true},
		{"A=b=c", "A", "b=c", true},
		{"change@/devices/foo", "change@/devices/foo", "", false},
	}

	for _, tt := range tests {
		key, value, ok := tt.record.KeyValue()
		if key != tt.key || value != tt.value || ok != tt.ok {
			t.Errorf("%q.KeyValue() = (%q, %q, %v), want (%q, %q, %v)",
				tt.record, key, value, ok, tt.key, tt.value, tt.ok)
		}
	}
}

func TestRecord_HasPrefix(t *testing.T) {
	r := Record("DEVTYPE=typec_port")
	if !r.HasPrefix("DEVTYPE=typec_") {
		t.Error("HasPrefix(DEVTYPE=typec_) = false")
	}
	if r.HasPrefix("DRIVER=") {
		t.Error("HasPrefix(DRIVER=) = true")
	}
}
