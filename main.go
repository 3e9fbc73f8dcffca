package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/openfiscal/go-fdms-bridge/fdms"
	"github.com/openfiscal/go-fdms-bridge/fdms/api"
	"github.com/openfiscal/go-fdms-bridge/fdms/config"
	"github.com/openfiscal/go-fdms-bridge/fdms/keys"
	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/orchestrator"
	"github.com/openfiscal/go-fdms-bridge/fdms/sign"
	"github.com/openfiscal/go-fdms-bridge/fdms/store"
	"github.com/openfiscal/go-fdms-bridge/fdms/util"
	"github.com/openfiscal/go-fdms-bridge/png"
)

func main() {

	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if util.DebugEnabled() {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		env, err := fdms.EnvironmentFromName(cfg.Environment)
		if err != nil {
			logrus.Fatal(err)
		}
		baseURL = env.BaseURL()
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logrus.Fatal(err)
	}

	signer := deviceSigner(cfg)

	var opts []api.Option
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.CertKeyFile)
		if err != nil {
			logrus.Fatalf("cannot load client certificate: %v", err)
		}
		opts = append(opts, api.WithCertificate(cert))
	} else {
		logrus.Warn("no client certificate configured, channel is not mutually authenticated")
	}

	client := api.New(baseURL, cfg.DeviceModelName, cfg.DeviceModelVersion, opts...)

	orch := orchestrator.New(
		orchestrator.Config{
			DeviceID:  cfg.DeviceID,
			Interval:  cfg.PollInterval,
			QRBaseURL: cfg.QRBaseURL,
		},
		store.NewSaleSource(db),
		store.NewRecordStore(db),
		api.NewSubmitService(client),
		signer,
	)

	if cfg.QRDir != "" {
		orch.OnOutcome(qrWriter(cfg.QRDir))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.Run(ctx)
}

func deviceSigner(cfg *config.Config) sign.Signer {
	if cfg.KeyFile == "" {
		return sign.Placeholder()
	}

	key, err := keys.LoadSignerFromFile(cfg.KeyFile, []byte(cfg.KeyPassword))
	if err != nil {
		logrus.Fatalf("cannot load device key: %v", err)
	}
	signer, err := sign.ForKey(key)
	if err != nil {
		logrus.Fatal(err)
	}
	return signer
}

// qrWriter saves a scannable QR PNG for every accepted receipt.
func qrWriter(dir string) func(*model.SaleDocument, *model.FiscalizationRecord) {
	return func(sale *model.SaleDocument, rec *model.FiscalizationRecord) {
		if !rec.Fiscalized() || rec.QRCode == "" {
			return
		}
		img, err := png.Qr(rec.QRCode)
		if err != nil {
			logrus.WithError(err).Warn("cannot encode receipt QR")
			return
		}
		path := filepath.Join(dir, fmt.Sprintf("receipt-%d.png", sale.ID))
		if err := os.WriteFile(path, img, 0o644); err != nil {
			logrus.WithError(err).Warn("cannot write receipt QR")
		}
	}
}
