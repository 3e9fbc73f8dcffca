package model

import "time"

// SaleDocument is a completed sale read from the point-of-sale database.
// The fiscalization core treats it as read-only input.
type SaleDocument struct {
	ID         uint64        `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time     `json:"createdAt"`
	Total      float64       `json:"total"`
	// Discount is the source system's denormalized sum of the line
	// discounts. Receipts are built from the per-line figures.
	Discount   float64       `json:"discount"`
	CustomerID uint64        `gorm:"index" json:"customerId"`
	UserID     uint64        `json:"userId"`
	SequenceNo int64         `gorm:"index" json:"sequenceNo"`
	Lines      []SaleLine    `gorm:"foreignKey:SaleDocumentID" json:"lines"`
	Payments   []SalePayment `gorm:"foreignKey:SaleDocumentID" json:"payments"`
}

func (SaleDocument) TableName() string { return "sale_documents" }

type SaleLine struct {
	ID             uint64  `gorm:"primaryKey" json:"id"`
	SaleDocumentID uint64  `gorm:"index" json:"saleDocumentId"`
	ProductID      uint64  `json:"productId"`
	ProductName    string  `json:"productName"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	// Discount is already subtracted in LineTotal.
	Discount       float64 `json:"discount"`
	TaxID          int     `json:"taxId"`
	TaxCode        string  `json:"taxCode"`
	TaxRate        float64 `json:"taxRate"`
	LineTotal      float64 `json:"lineTotal"`
}

func (SaleLine) TableName() string { return "sale_lines" }

type SalePayment struct {
	ID             uint64  `gorm:"primaryKey" json:"id"`
	SaleDocumentID uint64  `gorm:"index" json:"saleDocumentId"`
	MethodCode     string  `json:"methodCode"`
	Amount         float64 `json:"amount"`
}

func (SalePayment) TableName() string { return "sale_payments" }

// TaxRate is one active rate from the source system's tax table.
type TaxRate struct {
	ID     int     `gorm:"primaryKey" json:"id"`
	Code   string  `json:"code"`
	Rate   float64 `json:"rate"`
	Active bool    `gorm:"index" json:"active"`
}

func (TaxRate) TableName() string { return "tax_rates" }

// CompanyIdentity is the registered taxpayer the device fiscalizes for.
type CompanyIdentity struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	TaxID    string `json:"taxId"`
	Address  string `json:"address"`
	Currency string `json:"currency"`
}

func (CompanyIdentity) TableName() string { return "company_identities" }
