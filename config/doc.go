// Package config loads the TOML configuration of the tracking pipeline and
// converts it into the settings of each component.
package config
