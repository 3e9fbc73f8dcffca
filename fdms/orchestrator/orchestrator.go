package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/openfiscal/go-fdms-bridge/fdms/api"
	"github.com/openfiscal/go-fdms-bridge/fdms/assemble"
	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/qr"
	"github.com/openfiscal/go-fdms-bridge/fdms/sign"
)

var logger = log.WithField("component", "fdms.orchestrator")

// SaleSource is the read-only view of the point-of-sale data the pipeline
// needs.
type SaleSource interface {
	NextUnrecordedSale(ctx context.Context) (*model.SaleDocument, error)
	CompanyIdentity(ctx context.Context) (model.CompanyIdentity, error)
	ActiveTaxRates(ctx context.Context) ([]model.TaxRate, error)
	CurrencyCode(ctx context.Context) (string, error)
}

// RecordStore persists one write-once outcome per sale document.
type RecordStore interface {
	HasRecord(ctx context.Context, saleDocumentID uint64) (bool, error)
	PutRecord(ctx context.Context, rec *model.FiscalizationRecord) error
}

// Submitter performs the guarded exchange with the authority.
type Submitter interface {
	Submit(ctx context.Context, deviceID int, receipt *model.Receipt) api.Outcome
}

type Config struct {
	DeviceID int
	// Interval between polling ticks; defaults to 5s.
	Interval time.Duration
	// QRBaseURL is the authority's public receipt verification base. When
	// empty the raw QR payload is stored instead of a link.
	QRBaseURL string
	// InitialHash seeds the chain pointer, e.g. from the last accepted
	// receipt before a restart. Empty means a fresh chain.
	InitialHash string
}

const defaultInterval = 5 * time.Second

// Orchestrator drives the fiscalization pipeline: it polls for unrecorded
// sales, pushes exactly one at a time through assemble → sign → submit, and
// persists the outcome. It is the sole owner of the last-hash chain pointer,
// which advances only after the server confirms acceptance — the hash chain
// is strictly sequential, so there is never more than one sale in flight.
type Orchestrator struct {
	cfg       Config
	source    SaleSource
	records   RecordStore
	submitter Submitter
	signer    sign.Signer

	// Fire-and-forget downstream hook, e.g. ERP replication. Failures in it
	// never affect the recorded outcome.
	downstream func(*model.SaleDocument, *model.FiscalizationRecord)

	mu       sync.Mutex
	status   string
	lastHash string
}

func New(cfg Config, source SaleSource, records RecordStore, submitter Submitter, signer sign.Signer) *Orchestrator {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Orchestrator{
		cfg:       cfg,
		source:    source,
		records:   records,
		submitter: submitter,
		signer:    signer,
		lastHash:  cfg.InitialHash,
		status:    "idle",
	}
}

// OnOutcome registers the downstream sync hook.
func (o *Orchestrator) OnOutcome(fn func(*model.SaleDocument, *model.FiscalizationRecord)) {
	o.downstream = fn
}

// Status returns the live status string reflecting the latest event.
func (o *Orchestrator) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// LastHash exposes the current chain pointer, e.g. for persisting at shutdown.
// Safe to call while Run is ticking.
func (o *Orchestrator) LastHash() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastHash
}

func (o *Orchestrator) setLastHash(hash string) {
	o.mu.Lock()
	o.lastHash = hash
	o.mu.Unlock()
}

func (o *Orchestrator) setStatus(format string, args ...any) {
	o.mu.Lock()
	o.status = fmt.Sprintf(format, args...)
	o.mu.Unlock()
}

// Run polls on a fixed interval until ctx is cancelled. Cancellation only
// prevents new ticks: a started submission always runs to completion, so a
// receipt is never half-fiscalized by shutdown.
func (o *Orchestrator) Run(ctx context.Context) {
	logger.WithField("interval", o.cfg.Interval).Info("fiscalization loop started")

	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("fiscalization loop stopped")
			return
		case <-ticker.C:
			o.tick(context.WithoutCancel(ctx))
		}
	}
}

// tick processes at most one sale. Any failure is caught here, surfaced as
// status, and never crashes the loop; the next tick is independent.
func (o *Orchestrator) tick(ctx context.Context) {
	tickLog := logger.WithField("tick", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			tickLog.Errorf("tick panicked: %v", r)
			o.setStatus("error: internal failure: %v", r)
		}
	}()

	sale, err := o.source.NextUnrecordedSale(ctx)
	if err != nil {
		tickLog.WithError(err).Error("cannot read next sale")
		o.setStatus("error: cannot read next sale: %v", err)
		return
	}
	if sale == nil {
		o.setStatus("idle")
		return
	}

	tickLog = tickLog.WithField("documentId", sale.ID)

	// The source already excludes recorded sales; this guards against a
	// source that does not.
	if recorded, err := o.records.HasRecord(ctx, sale.ID); err != nil {
		tickLog.WithError(err).Error("cannot check record store")
		o.setStatus("error: cannot check record store: %v", err)
		return
	} else if recorded {
		tickLog.Warn("sale already has a fiscalization record, skipping")
		return
	}

	o.setStatus("processing sale %d", sale.ID)
	tickLog.Info("fiscalizing sale")

	identity, err := o.source.CompanyIdentity(ctx)
	if err != nil {
		tickLog.WithError(err).Error("cannot read company identity")
		o.setStatus("error: cannot read company identity: %v", err)
		return
	}
	currency, err := o.source.CurrencyCode(ctx)
	if err != nil {
		tickLog.WithError(err).Error("cannot read currency code")
		o.setStatus("error: cannot read currency code: %v", err)
		return
	}
	rates, err := o.source.ActiveTaxRates(ctx)
	if err != nil {
		tickLog.WithError(err).Error("cannot read tax rates")
		o.setStatus("error: cannot read tax rates: %v", err)
		return
	}

	receipt, err := assemble.Assemble(sale, identity, rates, currency)
	if err != nil {
		// Malformed input is terminal for this sale: record it so the next
		// tick moves on instead of retrying forever.
		tickLog.WithError(err).Warn("sale cannot be assembled")
		o.persistRejection(ctx, tickLog, sale, receipt, string(api.RejectionValidation), err.Error())
		return
	}

	signature, err := sign.Build(o.cfg.DeviceID, receipt, o.LastHash(), o.signer)
	if err != nil {
		tickLog.WithError(err).Error("cannot sign receipt")
		o.setStatus("error: cannot sign receipt: %v", err)
		return
	}
	receipt.ReceiptDeviceSignature = signature

	outcome := o.submitter.Submit(ctx, o.cfg.DeviceID, receipt)

	if outcome.OK() {
		o.persistAcceptance(ctx, tickLog, sale, receipt, outcome.Accepted)
		return
	}

	rej := outcome.Rejected
	message := rej.Message
	if len(rej.Details) > 0 {
		message = fmt.Sprintf("%s (%v)", rej.Message, rej.Details)
	}
	o.persistRejection(ctx, tickLog, sale, receipt, string(rej.Kind), message)
}

func (o *Orchestrator) persistAcceptance(ctx context.Context, tickLog *log.Entry, sale *model.SaleDocument, receipt *model.Receipt, accepted *api.Accepted) {
	qrCode := o.qrCode(tickLog, sale, receipt)

	rec := &model.FiscalizationRecord{
		SaleDocumentID: sale.ID,
		Hash:           receipt.ReceiptDeviceSignature.Hash,
		Signature:      receipt.ReceiptDeviceSignature.Signature,
		QRCode:         qrCode,
		InvoiceNo:      receipt.InvoiceNo,
		OperationID:    accepted.OperationID,
		TaxDetails:     taxSnapshot(receipt),
	}

	if err := o.records.PutRecord(ctx, rec); err != nil {
		// Not persisted, so the sale stays eligible; the pointer must not
		// advance either or the retry would sign against the wrong link.
		tickLog.WithError(err).Error("accepted receipt could not be recorded")
		o.setStatus("error: accepted receipt could not be recorded: %v", err)
		return
	}

	o.setLastHash(receipt.ReceiptDeviceSignature.Hash)
	o.setStatus("fiscalized sale %d (invoice %s)", sale.ID, receipt.InvoiceNo)
	tickLog.WithField("operationId", accepted.OperationID).Info("sale fiscalized")

	o.notifyDownstream(sale, rec)
}

func (o *Orchestrator) persistRejection(ctx context.Context, tickLog *log.Entry, sale *model.SaleDocument, receipt *model.Receipt, kind, message string) {
	errText := fmt.Sprintf("%s: %s", kind, message)

	rec := &model.FiscalizationRecord{
		SaleDocumentID: sale.ID,
		TaxDetails:     taxSnapshot(receipt),
		Error:          &errText,
	}
	if receipt != nil {
		rec.InvoiceNo = receipt.InvoiceNo
	}

	if err := o.records.PutRecord(ctx, rec); err != nil {
		tickLog.WithError(err).Error("rejection could not be recorded")
		o.setStatus("error: rejection could not be recorded: %v", err)
		return
	}

	// Chain pointer untouched: a rejected receipt is not part of the chain.
	o.setStatus("error: sale %d not fiscalized: %s", sale.ID, errText)
	tickLog.WithField("kind", kind).Warn("sale not fiscalized")

	o.notifyDownstream(sale, rec)
}

func (o *Orchestrator) qrCode(tickLog *log.Entry, sale *model.SaleDocument, receipt *model.Receipt) string {
	hash := receipt.ReceiptDeviceSignature.Hash

	var (
		code string
		err  error
	)
	if o.cfg.QRBaseURL != "" {
		code, err = qr.VerificationLink(o.cfg.QRBaseURL, o.cfg.DeviceID, sale.CreatedAt, receipt.ReceiptGlobalNo, hash)
	} else {
		code, err = qr.Payload(o.cfg.DeviceID, sale.CreatedAt, receipt.ReceiptGlobalNo, hash)
	}
	if err != nil {
		tickLog.WithError(err).Warn("cannot build QR code, record will have none")
		return ""
	}
	return code
}

func (o *Orchestrator) notifyDownstream(sale *model.SaleDocument, rec *model.FiscalizationRecord) {
	if o.downstream == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("downstream sync panicked: %v", r)
			}
		}()
		o.downstream(sale, rec)
	}()
}

func taxSnapshot(receipt *model.Receipt) string {
	if receipt == nil || len(receipt.ReceiptTaxes) == 0 {
		return "[]"
	}
	b, err := json.Marshal(receipt.ReceiptTaxes)
	if err != nil {
		return "[]"
	}
	return string(b)
}
