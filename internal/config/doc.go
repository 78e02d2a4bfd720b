// Package config loads and validates the mediathek configuration.
//
// Configuration lives in a TOML file under the user config directory
// (~/.config/mediathek/config.toml by default). All values have working
// defaults; a config file is only needed to point the pipeline at real
// source and library directories or to tune the transcoder supervision.
package config
