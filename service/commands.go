package service

import (
	"errors"
	"fmt"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/sysfs"
)

// AllPorts is the port name of results that cover every port.
const AllPorts = "all"

// Gadget attribute values.
const (
	gadgetDetached = "none"
	attrOn         = "1"
	attrOff        = "0"
)

// publish hands res to the sink under the status lock.
func (s *Service) publish(res typec.CommandResult) {
	s.sync.LockStatus()
	defer s.sync.UnlockStatus()
	s.pub.PublishResult(res)
}

// SwitchRole changes one port role. See [role.Coordinator.SwitchRole].
func (s *Service) SwitchRole(req typec.RoleRequest) typec.Status {
	return s.coord.SwitchRole(req)
}

// QueryPortStatus refreshes and publishes the status of every port.
func (s *Service) QueryPortStatus(txID int64) typec.Status {
	snap := s.agg.Refresh()
	s.publish(typec.CommandResult{
		PortName:      AllPorts,
		Kind:          typec.CommandQueryPortStatus,
		Status:        snap.Status,
		TransactionID: txID,
	})
	return snap.Status
}

// EnableUsbData turns USB data signaling on or off through the device
// controller, then refreshes.
func (s *Service) EnableUsbData(port string, enable bool, txID int64) typec.Status {
	pkg.LogInfo(pkg.ComponentService, "usb data signaling",
		"port", port, "enable", enable, "tx", txID)

	g := s.cfg.Gadget
	var errs []error
	if enable {
		if !s.agg.UsbDataEnabled() {
			if pullup, err := sysfs.ReadAttr(g.Pullup); err == nil && pullup != g.Name {
				errs = append(errs, writeLogged("gadget pull-up", g.Pullup, g.Name))
			}
			errs = append(errs, writeLogged("usb data", g.UsbData, attrOn))
		}
	} else {
		if pullup, err := sysfs.ReadAttr(g.Pullup); err == nil && pullup == g.Name {
			errs = append(errs, writeLogged("gadget pull-down", g.Pullup, gadgetDetached))
		}
		errs = append(errs,
			writeLogged("host mode id", g.ID, attrOn),
			writeLogged("vbus", g.Vbus, attrOff),
			writeLogged("usb data", g.UsbData, attrOff),
		)
	}

	st := typec.StatusOf(errors.Join(errs...))
	if st == typec.StatusSuccess {
		s.agg.SetUsbDataEnabled(enable)
	}

	s.publish(typec.CommandResult{
		PortName:      port,
		Kind:          typec.CommandEnableUsbData,
		Enable:        enable,
		Status:        st,
		TransactionID: txID,
	})
	s.agg.Refresh()
	return st
}

// EnableUsbDataWhileDocked routes USB data back to the port while a pogo
// dock is attached. Platforms without the dock attribute report
// NOT_SUPPORTED.
func (s *Service) EnableUsbDataWhileDocked(port string, txID int64) typec.Status {
	path := s.cfg.Pogo.MoveDataToUsb

	st := typec.StatusNotSupported
	if path != "" && sysfs.AttrExists(path) {
		st = typec.StatusOf(writeLogged("move data to usb", path, attrOn))
	}

	s.publish(typec.CommandResult{
		PortName:      port,
		Kind:          typec.CommandEnableUsbDataWhileDocked,
		Status:        st,
		TransactionID: txID,
	})
	s.agg.Refresh()
	return st
}

// ResetUsbPort pulls the gadget down, forcing the host to re-enumerate.
// The port status is not refreshed.
func (s *Service) ResetUsbPort(port string, txID int64) typec.Status {
	pkg.LogInfo(pkg.ComponentService, "reset usb port", "port", port, "tx", txID)

	st := typec.StatusOf(writeLogged("gadget pull-down", s.cfg.Gadget.Pullup, gadgetDetached))
	s.publish(typec.CommandResult{
		PortName:      port,
		Kind:          typec.CommandResetUsbPort,
		Status:        st,
		TransactionID: txID,
	})
	return st
}

// LimitPowerTransfer limits or restores sink and source power. A negative
// transaction id marks an internal request whose result is not published.
func (s *Service) LimitPowerTransfer(port string, limit bool, txID int64) typec.Status {
	var errs []error
	if _, err := s.tcpc.Path(); err != nil {
		errs = append(errs, err)
	} else {
		attr := func(name string) string {
			p, _ := s.tcpc.Attr(name)
			return p
		}
		value := attrOff
		if limit {
			value = attrOn
			errs = append(errs, writeLogged("sink current limit", attr(sysfs.AttrSinkLimitCurrent), attrOff))
		}
		errs = append(errs,
			writeLogged("sink limit", attr(sysfs.AttrSinkLimitEnable), value),
			writeLogged("source limit", attr(sysfs.AttrSourceLimitEnable), value),
		)
	}

	st := typec.StatusOf(errors.Join(errs...))
	pkg.LogInfo(pkg.ComponentService, "limit power transfer",
		"port", port, "limit", limit, "tx", txID, "status", st.String())

	if txID >= 0 {
		s.publish(typec.CommandResult{
			PortName:      port,
			Kind:          typec.CommandLimitPowerTransfer,
			Enable:        limit,
			Status:        st,
			TransactionID: txID,
		})
	}
	s.agg.Refresh()
	return st
}

// EnableContaminantPresenceDetection toggles moisture detection in the port
// controller. When detection is disabled by configuration the request
// succeeds without writing.
func (s *Service) EnableContaminantPresenceDetection(port string, enable bool, txID int64) typec.Status {
	st := typec.StatusSuccess
	if !s.cfg.ContaminantDetectionDisabled {
		value := attrOff
		if enable {
			value = attrOn
		}
		path, err := s.tcpc.Attr(sysfs.AttrContaminantDetection)
		if err == nil {
			err = writeLogged("contaminant detection", path, value)
		}
		st = typec.StatusOf(err)
	}

	s.publish(typec.CommandResult{
		PortName:      port,
		Kind:          typec.CommandEnableContaminantDetection,
		Enable:        enable,
		Status:        st,
		TransactionID: txID,
	})
	s.agg.Refresh()
	return st
}

// writeLogged writes one attribute, logging a failure under what.
func writeLogged(what, path, value string) error {
	if path == "" {
		pkg.LogError(pkg.ComponentService, "attribute not configured", "attr", what)
		return fmt.Errorf("%w: %s not configured", pkg.ErrIO, what)
	}
	if err := sysfs.WriteAttr(path, value); err != nil {
		pkg.LogError(pkg.ComponentService, "attribute write failed",
			"attr", what, "path", path, "value", value, "err", err)
		return err
	}
	return nil
}
