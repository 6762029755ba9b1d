// Package config loads and validates the peerauth daemon configuration.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "./peerauth.yml"

// Config is the top level configuration for the peerauth daemon.
type Config struct {
	Identity ApplicationIdentity `yaml:"Identity"`
	P2P      P2P                 `yaml:"P2P"`
	Logger   Logger              `yaml:"Logger"`
	Metrics  BasicService        `yaml:"Metrics"`
}

// ApplicationIdentity holds the local node's identity string, passed
// through to the authorization manager and advertised by handshake
// handlers (spec §6 "Configuration").
type ApplicationIdentity struct {
	LocalID string `yaml:"LocalID"`
}

// Validate checks that every sub-configuration is internally consistent.
func (c Config) Validate() error {
	if c.Identity.LocalID == "" {
		return errors.New("Identity.LocalID must not be empty")
	}
	if err := c.Logger.Validate(); err != nil {
		return errors.Wrap(err, "invalid Logger configuration")
	}
	if err := c.P2P.Validate(); err != nil {
		return errors.Wrap(err, "invalid P2P configuration")
	}
	return nil
}

// Load reads and validates a YAML config file at path, applying the
// package defaults for any field the file omits.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to read config")
	}
	return LoadBytes(data)
}

// LoadBytes decodes raw YAML bytes into a validated Config. Split out of
// Load so tests and embedders can construct a Config without touching
// the filesystem.
func LoadBytes(data []byte) (Config, error) {
	cfg := Config{
		P2P: P2P{
			DisconnectIntakeBuffer: DefaultDisconnectIntakeBuffer,
		},
		Logger: Logger{
			LogLevel:    "info",
			LogEncoding: "console",
		},
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to unmarshal config YAML")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
