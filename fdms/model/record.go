package model

import "time"

// FiscalizationRecord is the write-once outcome of one fiscalization attempt,
// keyed by the sale document id. Its presence alone means "already attempted":
// a document with a record is never picked up again, whatever the outcome was.
type FiscalizationRecord struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	SaleDocumentID uint64    `gorm:"uniqueIndex" json:"saleDocumentId"`
	Hash           string    `json:"hash"`
	Signature      string    `json:"signature"`
	QRCode         string    `json:"qrCode"`
	InvoiceNo      string    `json:"invoiceNo"`
	OperationID    string    `json:"operationId"`
	TaxDetails     string    `json:"taxDetails"`
	Error          *string   `json:"error"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (FiscalizationRecord) TableName() string { return "fiscalization_records" }

// Fiscalized reports whether the attempt ended in acceptance.
func (r *FiscalizationRecord) Fiscalized() bool {
	return r.Error == nil
}
