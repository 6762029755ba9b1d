package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitmesh/peerauth/config"
)

const sampleYAML = `
Identity:
  LocalID: node-1
P2P:
  Addresses:
    - "0.0.0.0:7070"
  DisconnectIntakeBuffer: 128
Logger:
  LogLevel: debug
  LogEncoding: json
Metrics:
  Enabled: true
  Address: "127.0.0.1:9090"
`

func TestLoadBytes(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "node-1", cfg.Identity.LocalID)
	assert.Equal(t, []string{"0.0.0.0:7070"}, cfg.P2P.Addresses)
	assert.Equal(t, 128, cfg.P2P.DisconnectIntakeBuffer)
	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadBytesAppliesDefaults(t *testing.T) {
	cfg, err := config.LoadBytes([]byte("Identity:\n  LocalID: node-1\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDisconnectIntakeBuffer, cfg.P2P.DisconnectIntakeBuffer)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
	assert.Equal(t, "console", cfg.Logger.LogEncoding)
}

func TestLoadBytesRejectsMissingIdentity(t *testing.T) {
	_, err := config.LoadBytes([]byte("P2P:\n  DisconnectIntakeBuffer: 10\n"))
	assert.Error(t, err)
}

func TestLoadBytesRejectsBadLogEncoding(t *testing.T) {
	_, err := config.LoadBytes([]byte("Identity:\n  LocalID: x\nLogger:\n  LogEncoding: xml\n"))
	assert.Error(t, err)
}

func TestLoadBytesRejectsUnknownFields(t *testing.T) {
	_, err := config.LoadBytes([]byte("Identity:\n  LocalID: x\nTypoField: 1\n"))
	assert.Error(t, err)
}
