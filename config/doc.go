// Package config loads typecd configuration.
//
// Values start from [New], are overridden by an optional YAML file, then by
// TYPECD_* environment variables, and are finally checked by
// [Config.Validate]. Nested sections use a section prefix, so the partner
// pattern is read from TYPECD_MARKERS_PARTNER_PATTERN.
package config
