package status

import (
	"fmt"
	"strings"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/sysfs"
)

// Probe fills in part of a snapshot under construction. A probe error is
// logged and never fails the refresh.
type Probe interface {
	Name() string
	Probe(ports []typec.PortStatus) error
}

// DataSessionMonitor reports compliance warnings observed on the USB data
// session for the given data role.
type DataSessionMonitor interface {
	ComplianceWarnings(role typec.DataRole) []typec.ComplianceWarning
}

// =============================================================================
// Contaminant Probe
// =============================================================================

// contaminantProbe reports moisture detection on the first port.
type contaminantProbe struct {
	tcpc *sysfs.TCPC
}

func (p *contaminantProbe) Name() string { return "contaminant" }

func (p *contaminantProbe) Probe(ports []typec.PortStatus) error {
	if len(ports) == 0 {
		return nil
	}
	ps := &ports[0]
	ps.SupportedContaminantProtectionModes = append(ps.SupportedContaminantProtectionModes,
		typec.ContaminantProtectionForceDisable)
	ps.ContaminantProtectionStatus = typec.ContaminantProtectionNone
	ps.ContaminantDetectionStatus = typec.ContaminantDetectionDisabled
	ps.SupportsEnableContaminantPresenceDetection = true
	ps.SupportsEnableContaminantPresenceProtection = false

	if p.tcpc == nil {
		return fmt.Errorf("%w: no TCPC", pkg.ErrNotSupported)
	}
	enabledPath, err := p.tcpc.Attr(sysfs.AttrContaminantDetection)
	if err != nil {
		return err
	}
	enabled, err := sysfs.ReadAttr(enabledPath)
	if err != nil {
		return err
	}
	if enabled != "1" {
		return nil
	}

	statusPath, err := p.tcpc.Attr(sysfs.AttrContaminantDetectionStatus)
	if err != nil {
		return err
	}
	detected, err := sysfs.ReadAttr(statusPath)
	if err != nil {
		return err
	}
	if detected == "1" {
		ps.ContaminantDetectionStatus = typec.ContaminantDetectionDetected
		ps.ContaminantProtectionStatus = typec.ContaminantProtectionForceDisable
	} else {
		ps.ContaminantDetectionStatus = typec.ContaminantDetectionNotDetected
	}

	pkg.LogDebug(pkg.ComponentStatus, "contaminant status",
		"detection", ps.ContaminantDetectionStatus.String(),
		"protection", ps.ContaminantProtectionStatus.String())
	return nil
}

// =============================================================================
// Power Limit Probe
// =============================================================================

// powerLimitProbe reports whether sink power transfer is limited on the
// first port.
type powerLimitProbe struct {
	tcpc *sysfs.TCPC
}

func (p *powerLimitProbe) Name() string { return "power-limit" }

func (p *powerLimitProbe) Probe(ports []typec.PortStatus) error {
	if len(ports) == 0 {
		return nil
	}
	if p.tcpc == nil {
		return fmt.Errorf("%w: no TCPC", pkg.ErrNotSupported)
	}
	path, err := p.tcpc.Attr(sysfs.AttrSinkLimitEnable)
	if err != nil {
		return err
	}
	enabled, err := sysfs.ReadAttr(path)
	if err != nil {
		return err
	}
	ports[0].PowerTransferLimited = enabled == "1"
	return nil
}

// =============================================================================
// Compliance Probe
// =============================================================================

// Non-compliance reason tokens, matched by prefix.
const (
	reasonDebugAccessory    = "debug-accessory"
	reasonBC12              = "bc12"
	reasonMissingRp         = "missing_rp"
	reasonOther             = "other"
	reasonInputPowerLimited = "input_power_limited"
)

// complianceProbe reads the non-compliant charger reasons of every port.
type complianceProbe struct {
	store             Store
	inputPowerLimited bool
}

func (p *complianceProbe) Name() string { return "compliance" }

func (p *complianceProbe) Probe(ports []typec.PortStatus) error {
	for i := range ports {
		ps := &ports[i]
		ps.SupportsComplianceWarnings = true

		reasons, err := p.store.ComplianceReasons(ps.PortName)
		if err != nil {
			continue
		}
		ps.ComplianceWarnings = append(ps.ComplianceWarnings, p.parse(reasons)...)

		// A compliance signal takes precedence over an absent power role:
		// the partner is a charger the port could not negotiate with.
		if len(ps.ComplianceWarnings) > 0 && ps.CurrentPowerRole == typec.PowerRoleNone {
			ps.CurrentMode = typec.ModeUFP
			ps.CurrentPowerRole = typec.PowerRoleSink
			ps.CurrentDataRole = typec.DataRoleNone
			ps.PowerBrickStatus = typec.PowerBrickConnected
		}
	}
	return nil
}

func (p *complianceProbe) parse(reasons string) []typec.ComplianceWarning {
	var warnings []typec.ComplianceWarning
	fields := strings.FieldsFunc(reasons, func(r rune) bool {
		switch r {
		case '[', ']', ',', ' ', '\n', 0:
			return true
		}
		return false
	})
	for _, reason := range fields {
		switch {
		case strings.HasPrefix(reason, reasonDebugAccessory):
			warnings = append(warnings, typec.ComplianceWarningDebugAccessory)
		case strings.HasPrefix(reason, reasonBC12):
			warnings = append(warnings, typec.ComplianceWarningBC12)
		case strings.HasPrefix(reason, reasonMissingRp):
			warnings = append(warnings, typec.ComplianceWarningMissingRp)
		case strings.HasPrefix(reason, reasonOther), strings.HasPrefix(reason, reasonInputPowerLimited):
			if p.inputPowerLimited {
				warnings = append(warnings, typec.ComplianceWarningInputPowerLimited)
			} else {
				warnings = append(warnings, typec.ComplianceWarningOther)
			}
		}
	}
	return warnings
}

// =============================================================================
// Data Session Probe
// =============================================================================

// dataSessionProbe appends data session warnings to the first port.
type dataSessionProbe struct {
	monitor DataSessionMonitor
}

func (p *dataSessionProbe) Name() string { return "data-session" }

func (p *dataSessionProbe) Probe(ports []typec.PortStatus) error {
	if len(ports) == 0 || p.monitor == nil {
		return nil
	}
	warnings := p.monitor.ComplianceWarnings(ports[0].CurrentDataRole)
	ports[0].ComplianceWarnings = append(ports[0].ComplianceWarnings, warnings...)
	return nil
}
