package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Environment        string
	BaseURL            string
	DeviceID           int
	DeviceModelName    string
	DeviceModelVersion string
	KeyFile            string
	KeyPassword        string
	CertFile           string
	CertKeyFile        string
	DatabasePath       string
	PollInterval       time.Duration
	QRBaseURL          string
	QRDir              string
	LogLevel           string
}

// Load reads the .env file if present, then the environment. Every value has
// a default except the device id, which Validate enforces.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Debugf(".env file not found, using environment variables: %v", err)
	}

	viper.SetDefault("FDMS_ENV", "test")
	viper.SetDefault("FDMS_BASE_URL", "")
	viper.SetDefault("FDMS_DEVICE_ID", 0)
	viper.SetDefault("FDMS_DEVICE_MODEL_NAME", "Server")
	viper.SetDefault("FDMS_DEVICE_MODEL_VERSION", "v1")
	viper.SetDefault("FDMS_KEY_FILE", "")
	viper.SetDefault("FDMS_KEY_PASSWORD", "")
	viper.SetDefault("FDMS_CERT_FILE", "")
	viper.SetDefault("FDMS_CERT_KEY_FILE", "")
	viper.SetDefault("FDMS_DB_PATH", "pos.db")
	viper.SetDefault("FDMS_POLL_SECONDS", 5)
	viper.SetDefault("FDMS_QR_BASE_URL", "")
	viper.SetDefault("FDMS_QR_DIR", "")
	viper.SetDefault("FDMS_LOG_LEVEL", "info")

	return &Config{
		Environment:        viper.GetString("FDMS_ENV"),
		BaseURL:            viper.GetString("FDMS_BASE_URL"),
		DeviceID:           viper.GetInt("FDMS_DEVICE_ID"),
		DeviceModelName:    viper.GetString("FDMS_DEVICE_MODEL_NAME"),
		DeviceModelVersion: viper.GetString("FDMS_DEVICE_MODEL_VERSION"),
		KeyFile:            viper.GetString("FDMS_KEY_FILE"),
		KeyPassword:        viper.GetString("FDMS_KEY_PASSWORD"),
		CertFile:           viper.GetString("FDMS_CERT_FILE"),
		CertKeyFile:        viper.GetString("FDMS_CERT_KEY_FILE"),
		DatabasePath:       viper.GetString("FDMS_DB_PATH"),
		PollInterval:       time.Duration(viper.GetInt("FDMS_POLL_SECONDS")) * time.Second,
		QRBaseURL:          viper.GetString("FDMS_QR_BASE_URL"),
		QRDir:              viper.GetString("FDMS_QR_DIR"),
		LogLevel:           viper.GetString("FDMS_LOG_LEVEL"),
	}
}

func (c *Config) Validate() error {
	if c.DeviceID <= 0 {
		return fmt.Errorf("FDMS_DEVICE_ID must be a positive device id, got %d", c.DeviceID)
	}
	if c.DeviceModelName == "" {
		return fmt.Errorf("FDMS_DEVICE_MODEL_NAME must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("FDMS_POLL_SECONDS must be positive")
	}
	if (c.CertFile == "") != (c.CertKeyFile == "") {
		return fmt.Errorf("FDMS_CERT_FILE and FDMS_CERT_KEY_FILE must be set together")
	}
	return nil
}
