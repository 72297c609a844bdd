package dispatch

import (
	"fmt"
	"regexp"

	"github.com/ardnew/typecd/typec/uevent"
)

// Action is what a uevent record asks the daemon to do.
type Action uint8

// Actions, in classification priority order.
const (
	ActionNone Action = iota
	ActionPartnerAdded
	ActionRefresh
	ActionOverheat
)

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionPartnerAdded:
		return "partner_added"
	case ActionRefresh:
		return "refresh"
	case ActionOverheat:
		return "overheat"
	default:
		return "none"
	}
}

// Default record markers.
const (
	DefaultPartnerPattern = `^add@.*-partner$`
	DefaultOverheatPrefix = "DRIVER=google,usbc_port_cooling_dev"
)

// DefaultRefreshPrefixes are the record prefixes that trigger a refresh.
var DefaultRefreshPrefixes = []string{
	"DEVTYPE=typec_",
	"DRIVER=max77759tcpc",
	"DRIVER=pogo-transport",
	"POWER_SUPPLY_NAME=usb",
}

// Markers configures a [Classifier].
type Markers struct {
	PartnerPattern  string   `yaml:"partner_pattern" env:"PARTNER_PATTERN"`
	RefreshPrefixes []string `yaml:"refresh_prefixes" env:"REFRESH_PREFIXES"`
	OverheatPrefix  string   `yaml:"overheat_prefix" env:"OVERHEAT_PREFIX"`
}

// DefaultMarkers returns the markers of the reference platform.
func DefaultMarkers() Markers {
	return Markers{
		PartnerPattern:  DefaultPartnerPattern,
		RefreshPrefixes: append([]string(nil), DefaultRefreshPrefixes...),
		OverheatPrefix:  DefaultOverheatPrefix,
	}
}

// Classifier maps uevent records to actions.
type Classifier struct {
	partner  *regexp.Regexp
	refresh  []string
	overheat string
}

// NewClassifier compiles m.
func NewClassifier(m Markers) (*Classifier, error) {
	re, err := regexp.Compile(m.PartnerPattern)
	if err != nil {
		return nil, fmt.Errorf("partner pattern: %w", err)
	}
	return &Classifier{
		partner:  re,
		refresh:  m.RefreshPrefixes,
		overheat: m.OverheatPrefix,
	}, nil
}

// Classify returns the action for one record.
func (c *Classifier) Classify(r uevent.Record) Action {
	if c.partner.MatchString(string(r)) {
		return ActionPartnerAdded
	}
	for _, prefix := range c.refresh {
		if prefix != "" && r.HasPrefix(prefix) {
			return ActionRefresh
		}
	}
	if c.overheat != "" && r.HasPrefix(c.overheat) {
		return ActionOverheat
	}
	return ActionNone
}
