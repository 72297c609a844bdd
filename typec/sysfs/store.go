package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
)

// Store is the port attribute store rooted at a Type-C class directory.
type Store struct {
	root string
}

// New creates a store rooted at root. An empty root selects [DefaultRoot].
func New(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{root: root}
}

// Root returns the class directory the store reads from.
func (s *Store) Root() string { return s.root }

// PortPath returns the path of an attribute of the named port.
func (s *Store) PortPath(port, attr string) string {
	return filepath.Join(s.root, port, attr)
}

// PartnerPath returns the path of an attribute of the port's partner.
func (s *Store) PartnerPath(port, attr string) string {
	return filepath.Join(s.root, port+PartnerSuffix, attr)
}

// =============================================================================
// Enumeration
// =============================================================================

// Enumerate lists the ports of the class directory, sorted by name. A port
// is connected iff its partner entry exists.
func (s *Store) Enumerate() ([]typec.Port, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrEnumeration, err)
	}

	connected := make(map[string]bool)
	for _, entry := range entries {
		// Class entries are symlinks into the device tree; plain
		// directories are accepted as well.
		if entry.Type()&os.ModeSymlink == 0 && !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if port, ok := strings.CutSuffix(name, PartnerSuffix); ok {
			connected[port] = true
			continue
		}
		// Cables, plugs and other class members carry a dash.
		if strings.ContainsRune(name, '-') {
			continue
		}
		if _, seen := connected[name]; !seen {
			connected[name] = false
		}
	}

	ports := make([]typec.Port, 0, len(connected))
	for name, conn := range connected {
		if !s.portExists(name) {
			// A partner entry whose port is missing.
			continue
		}
		ports = append(ports, typec.Port{Name: name, Connected: conn})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

func (s *Store) portExists(name string) bool {
	return AttrExists(filepath.Join(s.root, name))
}

// PartnerPresent reports whether a partner is attached to port.
func (s *Store) PartnerPresent(port string) bool {
	return AttrExists(filepath.Join(s.root, port+PartnerSuffix))
}

// =============================================================================
// Roles
// =============================================================================

// readAttrFor returns the attribute holding the current value of kind.
// The mode is derived from the data role.
func readAttrFor(kind typec.RoleKind) (string, error) {
	switch kind {
	case typec.RoleKindPower:
		return AttrPowerRole, nil
	case typec.RoleKindData, typec.RoleKindMode:
		return AttrDataRole, nil
	}
	return "", fmt.Errorf("%w: kind %d", pkg.ErrInvalidRole, kind)
}

// writeAttrFor returns the attribute a write of kind targets.
func writeAttrFor(kind typec.RoleKind) (string, error) {
	switch kind {
	case typec.RoleKindPower:
		return AttrPowerRole, nil
	case typec.RoleKindData:
		return AttrDataRole, nil
	case typec.RoleKindMode:
		return AttrPortType, nil
	}
	return "", fmt.Errorf("%w: kind %d", pkg.ErrInvalidRole, kind)
}

// ReadRole reads the current role of the given kind. "none" yields the NONE
// value of the kind; any other unexpected token wraps
// [pkg.ErrUnrecognizedRole].
func (s *Store) ReadRole(port string, kind typec.RoleKind) (typec.Role, error) {
	role := typec.Role{Kind: kind}

	attr, err := readAttrFor(kind)
	if err != nil {
		return role, err
	}
	raw, err := ReadAttr(s.PortPath(port, attr))
	if err != nil {
		return role, fmt.Errorf("read %s/%s: %w", port, attr, err)
	}
	token := ExtractSelected(raw)

	switch kind {
	case typec.RoleKindPower:
		switch token {
		case "source":
			role.Power = typec.PowerRoleSource
			return role, nil
		case "sink":
			role.Power = typec.PowerRoleSink
			return role, nil
		}
	case typec.RoleKindData:
		switch token {
		case "host":
			role.Data = typec.DataRoleHost
			return role, nil
		case "device":
			role.Data = typec.DataRoleDevice
			return role, nil
		}
	case typec.RoleKindMode:
		switch token {
		case "host":
			role.Mode = typec.ModeDFP
			return role, nil
		case "device":
			role.Mode = typec.ModeUFP
			return role, nil
		}
	}
	if token == "none" {
		return role, nil
	}
	return role, fmt.Errorf("%s/%s: %w %q", port, attr, pkg.ErrUnrecognizedRole, token)
}

// ReadToken returns the selected token of the attribute written for kind.
func (s *Store) ReadToken(port string, kind typec.RoleKind) (string, error) {
	attr, err := writeAttrFor(kind)
	if err != nil {
		return "", err
	}
	raw, err := ReadAttr(s.PortPath(port, attr))
	if err != nil {
		return "", fmt.Errorf("read %s/%s: %w", port, attr, err)
	}
	return ExtractSelected(raw), nil
}

// WriteRole writes the token of role to the port. The write is attempted
// once; a busy kernel is reported as [pkg.ErrBusy].
func (s *Store) WriteRole(port string, role typec.Role) error {
	token, ok := role.Token()
	if !ok {
		return fmt.Errorf("%w: %s", pkg.ErrInvalidRole, role)
	}
	return s.WriteToken(port, role.Kind, token)
}

// WriteToken writes a raw token to the attribute of kind.
func (s *Store) WriteToken(port string, kind typec.RoleKind, token string) error {
	attr, err := writeAttrFor(kind)
	if err != nil {
		return err
	}
	if !s.portExists(port) {
		return fmt.Errorf("%w: %s", pkg.ErrNoPort, port)
	}
	if err := WriteAttr(s.PortPath(port, attr), token); err != nil {
		return fmt.Errorf("write %s/%s=%s: %w", port, attr, token, err)
	}
	return nil
}

// =============================================================================
// Partner Attributes
// =============================================================================

// Accessory returns the partner's accessory mode.
func (s *Store) Accessory(port string) (string, error) {
	v, err := ReadAttr(s.PartnerPath(port, AttrAccessoryMode))
	if err != nil {
		return "", fmt.Errorf("read %s accessory: %w", port, err)
	}
	return v, nil
}

// SupportsPD reports whether the partner supports USB Power Delivery.
// Any read failure reports false.
func (s *Store) SupportsPD(port string) bool {
	v, err := ReadAttr(s.PartnerPath(port, AttrSupportsPD))
	return err == nil && v == "yes"
}

// ComplianceReasons returns the raw non-compliance reasons of the port.
func (s *Store) ComplianceReasons(port string) (string, error) {
	return ReadAttr(s.PortPath(port, AttrComplianceReasons))
}
