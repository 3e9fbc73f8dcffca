package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {

	cfg := Load()

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "Server", cfg.DeviceModelName)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, "pos.db", cfg.DatabasePath)
}

func TestLoadReadsEnvironment(t *testing.T) {

	t.Setenv("FDMS_DEVICE_ID", "321")
	t.Setenv("FDMS_POLL_SECONDS", "10")

	cfg := Load()

	assert.Equal(t, 321, cfg.DeviceID)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
}

func TestValidate(t *testing.T) {

	cfg := Load()
	assert.Error(t, cfg.Validate(), "device id is required")

	cfg.DeviceID = 321
	assert.NoError(t, cfg.Validate())

	cfg.CertFile = "client.pem"
	assert.Error(t, cfg.Validate(), "cert without key must fail")

	cfg.CertKeyFile = "client-key.pem"
	assert.NoError(t, cfg.Validate())
}
