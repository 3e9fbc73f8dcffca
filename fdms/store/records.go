package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
)

// RecordStore persists fiscalization outcomes, one write-once row per sale
// document id.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (r *RecordStore) HasRecord(ctx context.Context, saleDocumentID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.FiscalizationRecord{}).
		Where("sale_document_id = ?", saleDocumentID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count fiscalization records")
	}
	return count > 0, nil
}

// PutRecord inserts the outcome for a sale. The unique key is the sale
// document id; a conflicting insert is a no-op so the first recorded outcome
// stays authoritative.
func (r *RecordStore) PutRecord(ctx context.Context, rec *model.FiscalizationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_document_id"}},
			DoNothing: true,
		}).
		Create(rec).Error
	if err != nil {
		return errors.Wrap(err, "insert fiscalization record")
	}
	return nil
}
