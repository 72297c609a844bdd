package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testIDs = `# usb.ids excerpt
#
05e3  Genesys Logic, Inc.
	0608  Hub
	0610  Hub
18d1  Google Inc.
	4ee1  Nexus/Pixel Device (MTP)
	bogus line
C 09  Hub
	00  Unused
`

func TestNames_Parse(t *testing.T) {
	n := NewNames("/nonexistent")
	n.load()
	n.parse(strings.NewReader(testIDs))

	tests := []struct {
		vid, pid uint16
		vendor   string
		product  string
	}{
		{0x05e3, 0x0608, "Genesys Logic, Inc.", "Hub"},
		{0x05e3, 0x0610, "Genesys Logic, Inc.", "Hub"},
		{0x18d1, 0x4ee1, "Google Inc.", "Nexus/Pixel Device (MTP)"},
		{0x1234, 0x0001, "", ""},
	}
	for _, tt := range tests {
		if got := n.Vendor(tt.vid); got != tt.vendor {
			t.Errorf("Vendor(%04x) = %q, want %q", tt.vid, got, tt.vendor)
		}
		if got := n.Product(tt.vid, tt.pid); got != tt.product {
			t.Errorf("Product(%04x, %04x) = %q, want %q", tt.vid, tt.pid, got, tt.product)
		}
	}

	// Class section entries are not products of the last vendor.
	if got := n.Product(0x18d1, 0x0000); got != "" {
		t.Errorf("class entry parsed as product: %q", got)
	}
}

func TestNames_LoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usb.ids")
	if err := os.WriteFile(path, []byte(testIDs), 0o644); err != nil {
		t.Fatal(err)
	}

	n := NewNames(filepath.Join(t.TempDir(), "absent"), path)
	vendors, products := n.Len()
	if vendors != 2 || products != 3 {
		t.Errorf("Len() = %d, %d; want 2, 3", vendors, products)
	}
}

func TestNames_Missing(t *testing.T) {
	n := NewNames(filepath.Join(t.TempDir(), "absent"))
	if got := n.Vendor(0x05e3); got != "" {
		t.Errorf("Vendor with no database = %q", got)
	}
}

func TestNewNames_DefaultPaths(t *testing.T) {
	if n := NewNames(); len(n.paths) != len(DefaultIDPaths) {
		t.Errorf("NewNames() searches %d paths, want %d", len(n.paths), len(DefaultIDPaths))
	}
}
