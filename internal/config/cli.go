// Package config holds the kong-parsed command-line/config-file surface
// shared by cmd/dualsensed and cmd/ds-flash.
package config

// LogConfig controls logging for every binary in this module.
type LogConfig struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"DUALSENSED_LOG_LEVEL"`
	File  string `help:"Also write logs to this file; console logs then all go to stderr" env:"DUALSENSED_LOG_FILE"`
	Raw   string `help:"Write raw per-report hex dumps to this file" name:"raw-file" env:"DUALSENSED_LOG_RAW_FILE"`
}

// DaemonConfig is cmd/dualsensed's CLI surface.
type DaemonConfig struct {
	Log LogConfig `embed:"" prefix:"log."`

	Socket string `help:"IPC socket path (defaults to the OS runtime/temp dir)" env:"DUALSENSED_SOCKET"`
}

// FlashConfig is cmd/ds-flash's CLI surface.
type FlashConfig struct {
	Log LogConfig `embed:"" prefix:"log."`

	Firmware string `arg:"" name:"firmware" help:"Path to a firmware image to flash" type:"existingfile"`
}
