package store

import (
	"github.com/glebarez/sqlite"
	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
)

// Open connects to the point-of-sale sqlite database and makes sure the
// fiscalization tables exist. The sale tables belong to the POS application;
// migrating them here too keeps fresh databases usable in tests and demos.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}

	if err := db.AutoMigrate(
		&model.SaleDocument{},
		&model.SaleLine{},
		&model.SalePayment{},
		&model.TaxRate{},
		&model.CompanyIdentity{},
		&model.FiscalizationRecord{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate fiscalization tables")
	}

	return db, nil
}
