package assemble

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/money"
)

var logger = log.WithField("component", "fdms.assemble")

// ValidationError marks a sale document that cannot be turned into a receipt.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sale document: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Assemble converts a raw sale into the protocol receipt shape. All numeric
// fields pass through the 2-decimal normalizer before they are placed in the
// receipt. The result is fully populated but unsigned; no network or
// persistence side effects happen here.
func Assemble(doc *model.SaleDocument, identity model.CompanyIdentity, rates []model.TaxRate, currency string) (*model.Receipt, error) {
	if doc == nil || doc.ID == 0 {
		return nil, invalid("document id is missing")
	}
	if doc.CreatedAt.IsZero() {
		return nil, invalid("document %d has no creation date", doc.ID)
	}
	if len(doc.Lines) == 0 {
		return nil, invalid("document %d has no lines", doc.ID)
	}
	if len(doc.Payments) == 0 {
		return nil, invalid("document %d has no payments", doc.ID)
	}

	lines := make([]model.ReceiptLine, 0, len(doc.Lines))
	total := decimal.Zero
	lineNo := 0
	for i, l := range doc.Lines {
		if l.ProductName == "" {
			return nil, invalid("document %d line %d has no product name", doc.ID, i+1)
		}
		if l.LineTotal < 0 {
			return nil, invalid("document %d line %d has negative total", doc.ID, i+1)
		}
		if l.Discount < 0 {
			return nil, invalid("document %d line %d has negative discount", doc.ID, i+1)
		}

		// LineTotal is the discounted amount the buyer owes; the tax
		// breakdown works from it too. A discounted line is rendered as
		// the gross sale plus an explicit discount line so the printed
		// receipt shows the reduction.
		lineTotal := money.Round2(decimal.NewFromFloat(l.LineTotal))
		discount := money.Round2(decimal.NewFromFloat(l.Discount))
		total = total.Add(lineTotal)

		lineNo++
		lines = append(lines, model.ReceiptLine{
			ReceiptLineType:     model.LineSale,
			ReceiptLineNo:       lineNo,
			ReceiptLineName:     l.ProductName,
			ReceiptLinePrice:    money.Round2Float(l.UnitPrice),
			ReceiptLineQuantity: money.Round2Float(l.Quantity),
			ReceiptLineTotal:    toFloat(lineTotal.Add(discount)),
			TaxID:               l.TaxID,
			TaxCode:             l.TaxCode,
			TaxPercent:          money.Round2Float(l.TaxRate),
		})

		if discount.IsPositive() {
			lineNo++
			lines = append(lines, model.ReceiptLine{
				ReceiptLineType:     model.LineDiscount,
				ReceiptLineNo:       lineNo,
				ReceiptLineName:     l.ProductName,
				ReceiptLinePrice:    toFloat(discount.Neg()),
				ReceiptLineQuantity: 1,
				ReceiptLineTotal:    toFloat(discount.Neg()),
				TaxID:               l.TaxID,
				TaxCode:             l.TaxCode,
				TaxPercent:          money.Round2Float(l.TaxRate),
			})
		}
	}

	taxes := Breakdown(doc.Lines, rates)
	if len(taxes) == 0 {
		return nil, invalid("document %d yields no tax entries, at least one tax entry is required", doc.ID)
	}

	payments := make([]model.ReceiptPayment, 0, len(doc.Payments))
	for _, p := range doc.Payments {
		payments = append(payments, model.ReceiptPayment{
			MoneyTypeCode: MoneyTypeFor(p.MethodCode),
			PaymentAmount: money.Round2Float(p.Amount),
		})
	}

	seq := doc.SequenceNo
	if seq <= 0 {
		seq = int64(doc.ID)
	}

	receiptType := model.FiscalReceipt
	if doc.CustomerID > 0 {
		receiptType = model.FiscalInvoice
	}

	logger.WithFields(log.Fields{
		"documentId": doc.ID,
		"company":    identity.Name,
		"sequence":   seq,
	}).Debug("assembled receipt")

	return &model.Receipt{
		ReceiptType:     receiptType,
		ReceiptCurrency: currency,
		ReceiptCounter:  seq,
		ReceiptGlobalNo: seq,
		InvoiceNo:       strconv.FormatInt(seq, 10),
		ReceiptDate:     doc.CreatedAt.Format("2006-01-02T15:04:05"),
		ReceiptLines:    lines,
		ReceiptTaxes:    taxes,
		ReceiptPayments: payments,
		ReceiptTotal:    toFloat(money.Round2(total)),
	}, nil
}

// MoneyTypeFor maps an internal payment-method code to the protocol's closed
// enumeration. Unknown codes map to Other rather than failing the sale.
func MoneyTypeFor(code string) model.MoneyType {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "cash":
		return model.MoneyCash
	case "card", "visa", "mastercard", "debit", "pos":
		return model.MoneyCard
	case "mobile", "mobilewallet", "wallet", "ecocash", "onemoney":
		return model.MoneyMobileWallet
	case "transfer", "banktransfer", "bank", "rtgs", "swipe":
		return model.MoneyBankTransfer
	case "credit", "account":
		return model.MoneyCredit
	case "coupon", "voucher":
		return model.MoneyCoupon
	default:
		return model.MoneyOther
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
