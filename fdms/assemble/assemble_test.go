package assemble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
)

var date = time.Date(2026, 2, 18, 10, 30, 0, 0, time.UTC)

func identity() model.CompanyIdentity {
	return model.CompanyIdentity{ID: 1, Name: "Demo Traders", TaxID: "2000123456", Currency: "USD"}
}

func standardRates() []model.TaxRate {
	return []model.TaxRate{
		{ID: 1, Code: "A", Rate: 0, Active: true},
		{ID: 3, Code: "B", Rate: 15, Active: true},
	}
}

func saleDocument() *model.SaleDocument {
	return &model.SaleDocument{
		ID:         7,
		CreatedAt:  date,
		Total:      100,
		SequenceNo: 45,
		Lines: []model.SaleLine{
			{ProductName: "Widget", Quantity: 1, UnitPrice: 100, TaxID: 3, TaxCode: "B", TaxRate: 15, LineTotal: 100},
		},
		Payments: []model.SalePayment{
			{MethodCode: "cash", Amount: 115},
		},
	}
}

func TestAssembleSingleLineCashSale(t *testing.T) {

	r, err := Assemble(saleDocument(), identity(), standardRates(), "USD")
	assert.NoError(t, err)

	assert.Equal(t, model.FiscalReceipt, r.ReceiptType)
	assert.Equal(t, "USD", r.ReceiptCurrency)
	assert.Equal(t, int64(45), r.ReceiptCounter)
	assert.Equal(t, int64(45), r.ReceiptGlobalNo)
	assert.Equal(t, "45", r.InvoiceNo)
	assert.Equal(t, "2026-02-18T10:30:00", r.ReceiptDate)
	assert.Equal(t, 100.0, r.ReceiptTotal)

	assert.Len(t, r.ReceiptLines, 1)
	assert.Equal(t, model.LineSale, r.ReceiptLines[0].ReceiptLineType)
	assert.Equal(t, 1, r.ReceiptLines[0].ReceiptLineNo)
	assert.Equal(t, "Widget", r.ReceiptLines[0].ReceiptLineName)

	assert.Len(t, r.ReceiptTaxes, 1)
	assert.Equal(t, 15.0, r.ReceiptTaxes[0].TaxAmount)
	assert.Equal(t, 115.0, r.ReceiptTaxes[0].SalesAmountWithTax)

	assert.Len(t, r.ReceiptPayments, 1)
	assert.Equal(t, model.MoneyCash, r.ReceiptPayments[0].MoneyTypeCode)
	assert.Equal(t, 115.0, r.ReceiptPayments[0].PaymentAmount)

	assert.Nil(t, r.ReceiptDeviceSignature, "assembler must not sign")
}

func TestAssembleCustomerSaleBecomesInvoice(t *testing.T) {

	doc := saleDocument()
	doc.CustomerID = 12

	r, err := Assemble(doc, identity(), standardRates(), "USD")
	assert.NoError(t, err)
	assert.Equal(t, model.FiscalInvoice, r.ReceiptType)
}

func TestAssembleFallsBackToDocumentID(t *testing.T) {

	doc := saleDocument()
	doc.SequenceNo = 0

	r, err := Assemble(doc, identity(), standardRates(), "USD")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), r.ReceiptCounter)
	assert.Equal(t, "7", r.InvoiceNo)
}

func TestAssembleDiscountedLineEmitsDiscountLine(t *testing.T) {

	doc := saleDocument()
	// 110 gross, 10 off, buyer owes 100
	doc.Lines[0].Discount = 10

	r, err := Assemble(doc, identity(), standardRates(), "USD")
	assert.NoError(t, err)

	assert.Len(t, r.ReceiptLines, 2)

	sale := r.ReceiptLines[0]
	assert.Equal(t, model.LineSale, sale.ReceiptLineType)
	assert.Equal(t, 1, sale.ReceiptLineNo)
	assert.Equal(t, 110.0, sale.ReceiptLineTotal)

	disc := r.ReceiptLines[1]
	assert.Equal(t, model.LineDiscount, disc.ReceiptLineType)
	assert.Equal(t, 2, disc.ReceiptLineNo)
	assert.Equal(t, "Widget", disc.ReceiptLineName)
	assert.Equal(t, -10.0, disc.ReceiptLinePrice)
	assert.Equal(t, 1.0, disc.ReceiptLineQuantity)
	assert.Equal(t, -10.0, disc.ReceiptLineTotal)
	assert.Equal(t, "B", disc.TaxCode)

	// totals and taxes stay on the discounted amount
	assert.Equal(t, 100.0, r.ReceiptTotal)
	assert.Len(t, r.ReceiptTaxes, 1)
	assert.Equal(t, 15.0, r.ReceiptTaxes[0].TaxAmount)
}

func TestAssembleRejectsNegativeDiscount(t *testing.T) {

	doc := saleDocument()
	doc.Lines[0].Discount = -1

	_, err := Assemble(doc, identity(), standardRates(), "USD")
	assert.Error(t, err)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAssembleRejectsMalformedDocuments(t *testing.T) {

	for _, tc := range []struct {
		name string
		mod  func(d *model.SaleDocument)
	}{
		{"missing id", func(d *model.SaleDocument) { d.ID = 0 }},
		{"missing date", func(d *model.SaleDocument) { d.CreatedAt = time.Time{} }},
		{"no lines", func(d *model.SaleDocument) { d.Lines = nil }},
		{"no payments", func(d *model.SaleDocument) { d.Payments = nil }},
		{"nameless line", func(d *model.SaleDocument) { d.Lines[0].ProductName = "" }},
		{"negative line total", func(d *model.SaleDocument) { d.Lines[0].LineTotal = -5 }},
	} {
		doc := saleDocument()
		tc.mod(doc)

		_, err := Assemble(doc, identity(), standardRates(), "USD")
		assert.Error(t, err, tc.name)

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, tc.name)
	}
}

func TestAssembleRequiresTaxEntries(t *testing.T) {

	doc := saleDocument()
	doc.Lines[0].TaxID = 0
	doc.Lines[0].TaxCode = ""
	doc.Lines[0].TaxRate = 0

	_, err := Assemble(doc, identity(), nil, "USD")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one tax entry")
}

func TestMoneyTypeMapping(t *testing.T) {

	assert.Equal(t, model.MoneyCash, MoneyTypeFor("cash"))
	assert.Equal(t, model.MoneyCash, MoneyTypeFor(" Cash "))
	assert.Equal(t, model.MoneyCard, MoneyTypeFor("visa"))
	assert.Equal(t, model.MoneyMobileWallet, MoneyTypeFor("ecocash"))
	assert.Equal(t, model.MoneyBankTransfer, MoneyTypeFor("rtgs"))
	assert.Equal(t, model.MoneyCredit, MoneyTypeFor("account"))
	assert.Equal(t, model.MoneyCoupon, MoneyTypeFor("voucher"))

	// unknown codes map to Other rather than failing the sale
	assert.Equal(t, model.MoneyOther, MoneyTypeFor("barter"))
	assert.Equal(t, model.MoneyOther, MoneyTypeFor(""))
}
