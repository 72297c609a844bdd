package service

import (
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
)

// LogSink is a [typec.Sink] that logs everything it receives.
type LogSink struct{}

// OnSnapshot logs one line per port.
func (LogSink) OnSnapshot(snap typec.Snapshot) {
	pkg.LogInfo(pkg.ComponentService, "port status", "status", snap.Status.String(), "ports", len(snap.Ports))
	for _, p := range snap.Ports {
		pkg.LogInfo(pkg.ComponentPort, p.PortName,
			"power", p.CurrentPowerRole.String(),
			"data", p.CurrentDataRole.String(),
			"mode", p.CurrentMode.String(),
			"usbData", p.UsbDataStatus,
			"warnings", p.ComplianceWarnings,
			"contaminant", p.ContaminantDetectionStatus.String(),
			"limited", p.PowerTransferLimited,
			"brick", p.PowerBrickStatus.String())
	}
}

// OnCommandResult logs the result.
func (LogSink) OnCommandResult(res typec.CommandResult) {
	args := []any{
		"port", res.PortName,
		"command", res.Kind.String(),
		"status", res.Status.String(),
		"tx", res.TransactionID,
	}
	if res.Kind == typec.CommandSwitchRole {
		args = append(args, "role", res.Role.String())
	}
	if res.Status != typec.StatusSuccess {
		pkg.LogWarn(pkg.ComponentService, "command result", args...)
		return
	}
	pkg.LogInfo(pkg.ComponentService, "command result", args...)
}
