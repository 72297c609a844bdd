package sysfs

// DefaultRoot is the kernel Type-C class directory.
const DefaultRoot = "/sys/class/typec"

// PartnerSuffix is appended to a port name to form its partner directory.
const PartnerSuffix = "-partner"

// Port attribute names.
const (
	AttrPowerRole         = "power_role"
	AttrDataRole          = "data_role"
	AttrPortType          = "port_type"
	AttrComplianceReasons = "device/non_compliant_reasons"
)

// Partner attribute names.
const (
	AttrAccessoryMode = "accessory_mode"
	AttrSupportsPD    = "supports_usb_power_delivery"
)

// Accessory modes reported by accessory_mode.
const (
	AccessoryNone        = "none"
	AccessoryAnalogAudio = "analog_audio"
	AccessoryDebug       = "debug"
)

// DualToken is the port_type value of the dual-role fallback.
const DualToken = "dual"

// TCPC i2c client attribute names.
const (
	AttrContaminantDetection       = "contaminant_detection"
	AttrContaminantDetectionStatus = "contaminant_detection_status"
	AttrSinkLimitEnable            = "usb_limit_sink_enable"
	AttrSourceLimitEnable          = "usb_limit_source_enable"
	AttrSinkLimitCurrent           = "usb_limit_sink_current"
)
