package discovery

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultIDPaths lists the usual locations of the usb.ids database.
var DefaultIDPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// Names resolves vendor and product names from a usb.ids database. The
// database is loaded on first lookup; a missing database resolves nothing.
type Names struct {
	paths []string

	once     sync.Once
	vendors  map[uint16]string
	products map[uint32]string // vid<<16 | pid
}

// NewNames searches paths for the database; none selects [DefaultIDPaths].
func NewNames(paths ...string) *Names {
	if len(paths) == 0 {
		paths = DefaultIDPaths
	}
	return &Names{paths: paths}
}

func (n *Names) load() {
	n.once.Do(func() {
		n.vendors = make(map[uint16]string)
		n.products = make(map[uint32]string)
		for _, path := range n.paths {
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			n.parse(f)
			f.Close()
			return
		}
	})
}

// parse reads the usb.ids format: a vendor line "vvvv  Name" followed by
// tab-indented product lines "\tpppp  Name". Any other line, such as the
// class sections at the end of the file, ends the current vendor.
func (n *Names) parse(r io.Reader) {
	var vid uint16
	inVendor := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}

		if line[0] == '\t' {
			if !inVendor {
				continue
			}
			id, name, ok := splitEntry(line[1:])
			if !ok {
				continue
			}
			n.products[uint32(vid)<<16|uint32(id)] = name
			continue
		}

		id, name, ok := splitEntry(line)
		if !ok {
			inVendor = false
			continue
		}
		vid, inVendor = id, true
		n.vendors[vid] = name
	}
}

// splitEntry splits "xxxx  Name" into its hex id and name.
func splitEntry(line string) (uint16, string, bool) {
	if len(line) < 6 || line[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(line[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), strings.TrimSpace(line[5:]), true
}

// Vendor returns the name of vid, or "".
func (n *Names) Vendor(vid uint16) string {
	n.load()
	return n.vendors[vid]
}

// Product returns the name of vid:pid, or "".
func (n *Names) Product(vid, pid uint16) string {
	n.load()
	return n.products[uint32(vid)<<16|uint32(pid)]
}

// Len returns the number of vendors and products loaded.
func (n *Names) Len() (vendors, products int) {
	n.load()
	return len(n.vendors), len(n.products)
}
