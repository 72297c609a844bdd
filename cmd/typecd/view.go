package main

import (
	"fmt"

	"github.com/ardnew/typecd/discovery"
	"github.com/ardnew/typecd/typec"
)

// snapshotView is the YAML form of a snapshot printed by the status command.
type snapshotView struct {
	Status  string       `yaml:"status"`
	Ports   []portView   `yaml:"ports"`
	Devices []deviceView `yaml:"devices,omitempty"`
}

type portView struct {
	Name  string `yaml:"name"`
	Power string `yaml:"power_role"`
	Data  string `yaml:"data_role"`
	Mode  string `yaml:"mode"`

	CanChangeMode      bool `yaml:"can_change_mode"`
	CanChangeDataRole  bool `yaml:"can_change_data_role"`
	CanChangePowerRole bool `yaml:"can_change_power_role"`

	UsbData            []string `yaml:"usb_data"`
	ComplianceWarnings []string `yaml:"compliance_warnings,omitempty"`
	Contaminant        string   `yaml:"contaminant_detection"`
	Protection         string   `yaml:"contaminant_protection"`
	PowerLimited       bool     `yaml:"power_transfer_limited"`
	PowerBrick         string   `yaml:"power_brick"`
}

type deviceView struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Vendor  string `yaml:"vendor,omitempty"`
	Product string `yaml:"product,omitempty"`
	Node    string `yaml:"node,omitempty"`
}

func newSnapshotView(snap typec.Snapshot, devices []discovery.Device) snapshotView {
	v := snapshotView{
		Status: snap.Status.String(),
		Ports:  make([]portView, 0, len(snap.Ports)),
	}
	for _, p := range snap.Ports {
		v.Ports = append(v.Ports, portView{
			Name:               p.PortName,
			Power:              p.CurrentPowerRole.String(),
			Data:               p.CurrentDataRole.String(),
			Mode:               p.CurrentMode.String(),
			CanChangeMode:      p.CanChangeMode,
			CanChangeDataRole:  p.CanChangeDataRole,
			CanChangePowerRole: p.CanChangePowerRole,
			UsbData:            stringsOf(p.UsbDataStatus),
			ComplianceWarnings: stringsOf(p.ComplianceWarnings),
			Contaminant:        p.ContaminantDetectionStatus.String(),
			Protection:         p.ContaminantProtectionStatus.String(),
			PowerLimited:       p.PowerTransferLimited,
			PowerBrick:         p.PowerBrickStatus.String(),
		})
	}
	for _, d := range devices {
		v.Devices = append(v.Devices, deviceView{
			Name:    d.Name,
			ID:      d.ID(),
			Vendor:  d.Vendor,
			Product: d.Product,
			Node:    d.DevfsPath,
		})
	}
	return v
}

func stringsOf[T fmt.Stringer](values []T) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
