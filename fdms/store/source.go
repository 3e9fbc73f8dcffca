package store

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
)

// SaleSource reads completed sales and reference data from the POS database.
// It never writes to the sale tables.
type SaleSource struct {
	db *gorm.DB
}

func NewSaleSource(db *gorm.DB) *SaleSource {
	return &SaleSource{db: db}
}

// NextUnrecordedSale returns the oldest sale with no fiscalization record, or
// nil when every sale has been attempted. Presence of a record excludes a
// sale regardless of whether that attempt succeeded.
func (s *SaleSource) NextUnrecordedSale(ctx context.Context) (*model.SaleDocument, error) {
	var doc model.SaleDocument
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("id NOT IN (?)",
			s.db.Model(&model.FiscalizationRecord{}).Select("sale_document_id")).
		Order("created_at asc, id asc").
		First(&doc).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query next unrecorded sale")
	}
	return &doc, nil
}

// CompanyIdentity returns the registered taxpayer row. The POS keeps exactly
// one.
func (s *SaleSource) CompanyIdentity(ctx context.Context) (model.CompanyIdentity, error) {
	var identity model.CompanyIdentity
	err := s.db.WithContext(ctx).First(&identity).Error
	if err != nil {
		return model.CompanyIdentity{}, errors.Wrap(err, "query company identity")
	}
	return identity, nil
}

func (s *SaleSource) ActiveTaxRates(ctx context.Context) ([]model.TaxRate, error) {
	var rates []model.TaxRate
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id asc").
		Find(&rates).Error
	if err != nil {
		return nil, errors.Wrap(err, "query active tax rates")
	}
	return rates, nil
}

func (s *SaleSource) CurrencyCode(ctx context.Context) (string, error) {
	identity, err := s.CompanyIdentity(ctx)
	if err != nil {
		return "", err
	}
	return identity.Currency, nil
}
