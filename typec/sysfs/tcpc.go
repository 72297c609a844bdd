package sysfs

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ardnew/typecd/pkg"
)

// TCPC locates the i2c client directory of the Type-C port controller,
// which carries the moisture detection and power limit attributes.
//
// The directory is either configured directly or found by searching an i2c
// controller for a client named "<bus>-<client id>" whose name attribute
// matches the controller device name. A successful search is remembered.
type TCPC struct {
	searchRoot string
	devName    string
	clientID   string

	mu   sync.Mutex
	path string
}

// NewTCPC returns a locator. A non-empty path is used as-is.
func NewTCPC(path, searchRoot, devName, clientID string) *TCPC {
	return &TCPC{
		searchRoot: searchRoot,
		devName:    devName,
		clientID:   clientID,
		path:       path,
	}
}

// Path returns the client directory, searching for it on first use.
func (t *TCPC) Path() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path != "" {
		return t.path, nil
	}
	if t.searchRoot == "" {
		return "", fmt.Errorf("%w: no TCPC search root", pkg.ErrNotSupported)
	}

	pattern := filepath.Join(t.searchRoot, "i2c-*", "*-"+t.clientID)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pkg.ErrIO, err)
	}
	for _, dir := range matches {
		name, err := ReadAttr(filepath.Join(dir, "name"))
		if err != nil || name != t.devName {
			continue
		}
		t.path = dir
		pkg.LogDebug(pkg.ComponentStatus, "TCPC client located", "path", dir)
		return dir, nil
	}
	return "", fmt.Errorf("%w: TCPC %s client %s under %s",
		pkg.ErrIO, t.devName, t.clientID, t.searchRoot)
}

// Attr returns the path of a TCPC attribute.
func (t *TCPC) Attr(name string) (string, error) {
	dir, err := t.Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
