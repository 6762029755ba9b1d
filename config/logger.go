package config

import "fmt"

// Logger contains the daemon's logging configuration.
type Logger struct {
	LogLevel        string `yaml:"LogLevel"`
	LogEncoding     string `yaml:"LogEncoding"`
	ForceTimestamps bool   `yaml:"ForceTimestamps"`
}

// Validate returns an error if the Logger configuration is not valid.
func (l Logger) Validate() error {
	if l.LogEncoding != "" && l.LogEncoding != "console" && l.LogEncoding != "json" {
		return fmt.Errorf("invalid LogEncoding: %s", l.LogEncoding)
	}
	return nil
}
