package sysfs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/ardnew/typecd/pkg"
)

// =============================================================================
// Attribute Helpers
// =============================================================================

// ReadAttr reads an attribute and trims surrounding whitespace.
func ReadAttr(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pkg.ErrIO, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteAttr writes value to an existing attribute in a single write call.
// EAGAIN and EBUSY from the kernel are reported as [pkg.ErrBusy].
func WriteAttr(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrIO, err)
	}
	_, werr := f.WriteString(value)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		if isBusy(werr) {
			return fmt.Errorf("%w: %w", pkg.ErrBusy, werr)
		}
		return fmt.Errorf("%w: %w", pkg.ErrIO, werr)
	}
	return nil
}

// AttrExists reports whether path exists.
func AttrExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isBusy(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == unix.EAGAIN || errno == unix.EBUSY
}

// ExtractSelected returns the bracketed token of a decorated attribute value
// such as "source [sink]". Undecorated values are returned unchanged.
func ExtractSelected(value string) string {
	first := strings.IndexByte(value, '[')
	if first < 0 {
		return value
	}
	last := strings.IndexByte(value[first:], ']')
	if last < 0 {
		return value
	}
	return value[first+1 : first+last]
}
