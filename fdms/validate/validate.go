package validate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/money"
)

// FieldError names the offending field path and what is wrong with it.
type FieldError struct {
	Path    string
	Message string
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// Headers is the subset of request headers the wire schema requires.
type Headers struct {
	ContentType        string
	DeviceModelName    string
	DeviceModelVersion string
}

const maxLineNameLen = 200

// CheckSubmission verifies an assembled request against the wire schema
// before transmission. It returns the ordered list of every violation found,
// never mutates its input and never panics. A request with a non-empty error
// list would be rejected by the remote verifier, so callers short-circuit on
// it without going to the network.
func CheckSubmission(h Headers, deviceID int, r *model.Receipt) (bool, []FieldError) {
	var errs []FieldError
	add := func(path, message string) {
		errs = append(errs, FieldError{Path: path, Message: message})
	}

	if h.ContentType != "application/json" {
		add("headers.Content-Type", "must be application/json")
	}
	if h.DeviceModelName == "" {
		add("headers.DeviceModelName", "is required")
	}
	if h.DeviceModelVersion == "" {
		add("headers.DeviceModelVersion", "is required")
	}
	if deviceID <= 0 {
		add("deviceID", "must be positive")
	}

	if r == nil {
		add("receipt", "is required")
		return false, errs
	}

	if r.ReceiptType == "" {
		add("receipt.receiptType", "is required")
	} else if !model.ValidReceiptType(r.ReceiptType) {
		add("receipt.receiptType", fmt.Sprintf("invalid value %q", r.ReceiptType))
	}

	if r.ReceiptCurrency == "" {
		add("receipt.receiptCurrency", "is required")
	} else if len(r.ReceiptCurrency) != 3 {
		add("receipt.receiptCurrency", "must be exactly 3 characters")
	}

	if r.ReceiptCounter <= 0 {
		add("receipt.receiptCounter", "must be positive")
	}
	if r.ReceiptGlobalNo <= 0 {
		add("receipt.receiptGlobalNo", "must be positive")
	}
	if r.InvoiceNo == "" {
		add("receipt.invoiceNo", "is required")
	}

	if r.ReceiptDate == "" {
		add("receipt.receiptDate", "is required")
	} else if !parsesAsISODate(r.ReceiptDate) {
		add("receipt.receiptDate", fmt.Sprintf("not an ISO-8601 date: %q", r.ReceiptDate))
	}

	checkLines(r.ReceiptLines, add)
	checkTaxes(r.ReceiptTaxes, add)
	checkPayments(r.ReceiptPayments, add)

	if r.ReceiptTotal < 0 {
		add("receipt.receiptTotal", "must not be negative")
	}

	if r.ReceiptDeviceSignature == nil {
		add("receipt.receiptDeviceSignature", "is required")
	} else {
		if r.ReceiptDeviceSignature.Hash == "" {
			add("receipt.receiptDeviceSignature.hash", "is required")
		}
		if r.ReceiptDeviceSignature.Signature == "" {
			add("receipt.receiptDeviceSignature.signature", "is required")
		}
	}

	return len(errs) == 0, errs
}

func checkLines(lines []model.ReceiptLine, add func(path, message string)) {
	if len(lines) == 0 {
		add("receipt.receiptLines", "at least one line is required")
		return
	}
	for i, l := range lines {
		path := fmt.Sprintf("receipt.receiptLines[%d]", i)
		if !model.ValidLineType(l.ReceiptLineType) {
			add(path+".receiptLineType", fmt.Sprintf("invalid value %q", l.ReceiptLineType))
		}
		if l.ReceiptLineName == "" {
			add(path+".receiptLineName", "is required")
		} else if len(l.ReceiptLineName) > maxLineNameLen {
			add(path+".receiptLineName", fmt.Sprintf("longer than %d characters", maxLineNameLen))
		}
	}
}

func checkTaxes(taxes []model.ReceiptTax, add func(path, message string)) {
	if len(taxes) == 0 {
		add("receipt.receiptTaxes", "at least one tax entry is required")
		return
	}
	for i, t := range taxes {
		path := fmt.Sprintf("receipt.receiptTaxes[%d]", i)
		if t.TaxCode == "" {
			add(path+".taxCode", "is required")
		}
		if t.TaxPercent < 0 {
			add(path+".taxPercent", "must not be negative")
		}
	}
}

func checkPayments(payments []model.ReceiptPayment, add func(path, message string)) {
	if len(payments) == 0 {
		add("receipt.receiptPayments", "at least one payment is required")
		return
	}
	for i, p := range payments {
		path := fmt.Sprintf("receipt.receiptPayments[%d]", i)
		if !model.ValidMoneyType(p.MoneyTypeCode) {
			add(path+".moneyTypeCode", fmt.Sprintf("invalid value %q", p.MoneyTypeCode))
		}
	}
}

// PaymentsCoverTotal reports whether the payments sum to the receipt total
// plus all tax amounts, which the authority enforces remotely. It is a local
// pre-check only: callers log a mismatch rather than rejecting, so behavior
// stays aligned with the remote verdict.
func PaymentsCoverTotal(r *model.Receipt) bool {
	due := decimal.NewFromFloat(r.ReceiptTotal)
	for _, t := range r.ReceiptTaxes {
		due = due.Add(decimal.NewFromFloat(t.TaxAmount))
	}

	paid := decimal.Zero
	for _, p := range r.ReceiptPayments {
		paid = paid.Add(decimal.NewFromFloat(p.PaymentAmount))
	}

	return money.Round2(paid).Equal(money.Round2(due))
}

func parsesAsISODate(s string) bool {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
