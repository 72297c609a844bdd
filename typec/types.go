package typec

import "fmt"

// =============================================================================
// Roles
// =============================================================================

// PowerRole is the power direction of a port.
type PowerRole uint8

// Power roles.
const (
	PowerRoleNone PowerRole = iota
	PowerRoleSource
	PowerRoleSink
)

// String returns the kernel token for the power role.
func (r PowerRole) String() string {
	switch r {
	case PowerRoleSource:
		return "source"
	case PowerRoleSink:
		return "sink"
	default:
		return "none"
	}
}

// DataRole is the USB data direction of a port.
type DataRole uint8

// Data roles.
const (
	DataRoleNone DataRole = iota
	DataRoleHost
	DataRoleDevice
)

// String returns the kernel token for the data role.
func (r DataRole) String() string {
	switch r {
	case DataRoleHost:
		return "host"
	case DataRoleDevice:
		return "device"
	default:
		return "none"
	}
}

// Mode is the directional or functional classification of a port.
type Mode uint8

// Port modes.
const (
	ModeNone Mode = iota
	ModeUFP
	ModeDFP
	ModeDRP
	ModeAudioAccessory
	ModeDebugAccessory
)

// String returns a readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeUFP:
		return "ufp"
	case ModeDFP:
		return "dfp"
	case ModeDRP:
		return "drp"
	case ModeAudioAccessory:
		return "audio_accessory"
	case ModeDebugAccessory:
		return "debug_accessory"
	default:
		return "none"
	}
}

// RoleKind selects which role attribute a [Role] refers to.
type RoleKind uint8

// Role kinds.
const (
	RoleKindPower RoleKind = iota
	RoleKindData
	RoleKindMode
)

// String returns the name of the role kind.
func (k RoleKind) String() string {
	switch k {
	case RoleKindPower:
		return "power"
	case RoleKindData:
		return "data"
	case RoleKindMode:
		return "mode"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Role is a tagged role value. Only the field matching Kind is meaningful.
type Role struct {
	Kind  RoleKind
	Power PowerRole
	Data  DataRole
	Mode  Mode
}

// PowerRoleOf wraps a power role.
func PowerRoleOf(r PowerRole) Role { return Role{Kind: RoleKindPower, Power: r} }

// DataRoleOf wraps a data role.
func DataRoleOf(r DataRole) Role { return Role{Kind: RoleKindData, Data: r} }

// ModeOf wraps a mode.
func ModeOf(m Mode) Role { return Role{Kind: RoleKindMode, Mode: m} }

// Token returns the string written to the kernel attribute for this role.
// The second result is false when the role has no writable representation.
//
// Modes are written to port_type, where "sink" and "source" stand in for
// UFP and DFP.
func (r Role) Token() (string, bool) {
	switch r.Kind {
	case RoleKindPower:
		switch r.Power {
		case PowerRoleSource, PowerRoleSink:
			return r.Power.String(), true
		}
	case RoleKindData:
		switch r.Data {
		case DataRoleHost, DataRoleDevice:
			return r.Data.String(), true
		}
	case RoleKindMode:
		switch r.Mode {
		case ModeUFP:
			return "sink", true
		case ModeDFP:
			return "source", true
		case ModeDRP:
			return "dual", true
		}
	}
	return "none", false
}

// String returns "kind=value".
func (r Role) String() string {
	switch r.Kind {
	case RoleKindPower:
		return "power=" + r.Power.String()
	case RoleKindData:
		return "data=" + r.Data.String()
	case RoleKindMode:
		return "mode=" + r.Mode.String()
	default:
		return r.Kind.String()
	}
}

// ParseRole parses a role from a kind name and value, as accepted on the
// command line (e.g. "data", "host" or "mode", "dfp").
func ParseRole(kind, value string) (Role, error) {
	switch kind {
	case "power":
		switch value {
		case "source":
			return PowerRoleOf(PowerRoleSource), nil
		case "sink":
			return PowerRoleOf(PowerRoleSink), nil
		}
	case "data":
		switch value {
		case "host":
			return DataRoleOf(DataRoleHost), nil
		case "device":
			return DataRoleOf(DataRoleDevice), nil
		}
	case "mode":
		switch value {
		case "ufp", "sink":
			return ModeOf(ModeUFP), nil
		case "dfp", "source":
			return ModeOf(ModeDFP), nil
		case "drp", "dual":
			return ModeOf(ModeDRP), nil
		}
	default:
		return Role{}, fmt.Errorf("unknown role kind %q", kind)
	}
	return Role{}, fmt.Errorf("unknown %s role %q", kind, value)
}

// =============================================================================
// Port Status
// =============================================================================

// UsbDataStatus describes whether USB data signaling is available.
type UsbDataStatus uint8

// USB data status flags. A port may report several at once.
const (
	UsbDataStatusUnknown UsbDataStatus = iota
	UsbDataStatusEnabled
	UsbDataStatusDisabledOverheat
	UsbDataStatusDisabledContaminant
	UsbDataStatusDisabledDock
	UsbDataStatusDisabledForce
	UsbDataStatusDisabledDebug
	UsbDataStatusDisabledDockHostMode
	UsbDataStatusDisabledDockDeviceMode
)

var usbDataStatusNames = [...]string{
	"unknown", "enabled", "disabled_overheat", "disabled_contaminant",
	"disabled_dock", "disabled_force", "disabled_debug",
	"disabled_dock_host_mode", "disabled_dock_device_mode",
}

func (s UsbDataStatus) String() string {
	if int(s) < len(usbDataStatusNames) {
		return usbDataStatusNames[s]
	}
	return "unknown"
}

// ComplianceWarning names a reason the attached partner is non-compliant.
type ComplianceWarning uint8

// Compliance warnings.
const (
	ComplianceWarningOther ComplianceWarning = iota + 1
	ComplianceWarningDebugAccessory
	ComplianceWarningBC12
	ComplianceWarningMissingRp
	ComplianceWarningInputPowerLimited
	ComplianceWarningMissingDataLines
	ComplianceWarningEnumerationFail
	ComplianceWarningFlakyConnection
	ComplianceWarningUnreliableIO
)

var complianceWarningNames = [...]string{
	"", "other", "debug_accessory", "bc_1_2", "missing_rp",
	"input_power_limited", "missing_data_lines", "enumeration_fail",
	"flaky_connection", "unreliable_io",
}

func (w ComplianceWarning) String() string {
	if int(w) < len(complianceWarningNames) && w != 0 {
		return complianceWarningNames[w]
	}
	return "invalid"
}

// ContaminantDetectionStatus reports the moisture detection state.
type ContaminantDetectionStatus uint8

// Contaminant detection states.
const (
	ContaminantDetectionNotSupported ContaminantDetectionStatus = iota
	ContaminantDetectionDisabled
	ContaminantDetectionNotDetected
	ContaminantDetectionDetected
)

func (s ContaminantDetectionStatus) String() string {
	switch s {
	case ContaminantDetectionDisabled:
		return "disabled"
	case ContaminantDetectionNotDetected:
		return "not_detected"
	case ContaminantDetectionDetected:
		return "detected"
	default:
		return "not_supported"
	}
}

// ContaminantProtection is both a protection mode and the active protection
// status of a port.
type ContaminantProtection uint8

// Contaminant protection modes.
const (
	ContaminantProtectionNone ContaminantProtection = iota
	ContaminantProtectionForceSink
	ContaminantProtectionForceSource
	ContaminantProtectionForceDisable
)

func (p ContaminantProtection) String() string {
	switch p {
	case ContaminantProtectionForceSink:
		return "force_sink"
	case ContaminantProtectionForceSource:
		return "force_source"
	case ContaminantProtectionForceDisable:
		return "force_disable"
	default:
		return "none"
	}
}

// PowerBrickStatus reports whether a charger is attached.
type PowerBrickStatus uint8

// Power brick states.
const (
	PowerBrickUnknown PowerBrickStatus = iota
	PowerBrickConnected
	PowerBrickNotConnected
)

func (s PowerBrickStatus) String() string {
	switch s {
	case PowerBrickConnected:
		return "connected"
	case PowerBrickNotConnected:
		return "not_connected"
	default:
		return "unknown"
	}
}

// Port is a Type-C port as enumerated from the kernel.
type Port struct {
	Name      string
	Connected bool // a partner is attached
}

// PortStatus is the aggregated state of one port.
type PortStatus struct {
	PortName string

	CurrentPowerRole PowerRole
	CurrentDataRole  DataRole
	CurrentMode      Mode

	CanChangeMode      bool
	CanChangeDataRole  bool
	CanChangePowerRole bool
	SupportedModes     []Mode

	UsbDataStatus              []UsbDataStatus
	ComplianceWarnings         []ComplianceWarning
	SupportsComplianceWarnings bool

	ContaminantDetectionStatus                  ContaminantDetectionStatus
	ContaminantProtectionStatus                 ContaminantProtection
	SupportedContaminantProtectionModes         []ContaminantProtection
	SupportsEnableContaminantPresenceDetection  bool
	SupportsEnableContaminantPresenceProtection bool

	PowerTransferLimited bool
	PowerBrickStatus     PowerBrickStatus
}

// NewPortStatus returns a status for the named port with every role NONE.
func NewPortStatus(name string) PortStatus {
	return PortStatus{
		PortName:         name,
		CurrentPowerRole: PowerRoleNone,
		CurrentDataRole:  DataRoleNone,
		CurrentMode:      ModeNone,
		PowerBrickStatus: PowerBrickUnknown,
	}
}

// Snapshot is the published status of every port.
type Snapshot struct {
	Ports  []PortStatus
	Status Status
}

// Port returns the status for the named port.
func (s Snapshot) Port(name string) (PortStatus, bool) {
	for _, p := range s.Ports {
		if p.PortName == name {
			return p, true
		}
	}
	return PortStatus{}, false
}

// =============================================================================
// Commands
// =============================================================================

// RoleRequest asks for one port role to be changed.
type RoleRequest struct {
	PortName      string
	Role          Role
	TransactionID int64
}

// CommandKind identifies the command a [CommandResult] answers.
type CommandKind uint8

// Command kinds.
const (
	CommandSwitchRole CommandKind = iota
	CommandQueryPortStatus
	CommandEnableUsbData
	CommandEnableUsbDataWhileDocked
	CommandResetUsbPort
	CommandLimitPowerTransfer
	CommandEnableContaminantDetection
)

var commandKindNames = [...]string{
	"switch_role", "query_port_status", "enable_usb_data",
	"enable_usb_data_while_docked", "reset_usb_port",
	"limit_power_transfer", "enable_contaminant_detection",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "unknown"
}

// CommandResult is the single asynchronous outcome of a command.
type CommandResult struct {
	PortName      string
	Kind          CommandKind
	Role          Role // CommandSwitchRole only
	Enable        bool // enable/limit commands only
	Status        Status
	TransactionID int64
}
