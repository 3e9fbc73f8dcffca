package model

// ReceiptType is the closed set of document types the authority accepts.
type ReceiptType string

const (
	FiscalInvoice    ReceiptType = "FiscalInvoice"
	FiscalReceipt    ReceiptType = "FiscalReceipt"
	NonFiscalReceipt ReceiptType = "NonFiscalReceipt"
)

func ValidReceiptType(t ReceiptType) bool {
	switch t {
	case FiscalInvoice, FiscalReceipt, NonFiscalReceipt:
		return true
	}
	return false
}

// LineType classifies a single receipt line.
type LineType string

const (
	LineSale     LineType = "Sale"
	LineDiscount LineType = "Discount"
	LineReturn   LineType = "Return"
	LineVoid     LineType = "Void"
)

func ValidLineType(t LineType) bool {
	switch t {
	case LineSale, LineDiscount, LineReturn, LineVoid:
		return true
	}
	return false
}

// MoneyType is the protocol's closed payment-method enumeration.
type MoneyType string

const (
	MoneyCash         MoneyType = "Cash"
	MoneyCard         MoneyType = "Card"
	MoneyMobileWallet MoneyType = "MobileWallet"
	MoneyBankTransfer MoneyType = "BankTransfer"
	MoneyCredit       MoneyType = "Credit"
	MoneyCoupon       MoneyType = "Coupon"
	MoneyOther        MoneyType = "Other"
)

func ValidMoneyType(t MoneyType) bool {
	switch t {
	case MoneyCash, MoneyCard, MoneyMobileWallet, MoneyBankTransfer, MoneyCredit, MoneyCoupon, MoneyOther:
		return true
	}
	return false
}

// Receipt is the protocol-shaped representation of one sale. It is built
// fresh per submission attempt and never mutated after signing.
//
// ReceiptDate carries the already-formatted yyyy-MM-ddTHH:mm:ss value so the
// JSON body is byte-identical to what entered the signature computation.
type Receipt struct {
	ReceiptType            ReceiptType      `json:"receiptType"`
	ReceiptCurrency        string           `json:"receiptCurrency"`
	ReceiptCounter         int64            `json:"receiptCounter"`
	ReceiptGlobalNo        int64            `json:"receiptGlobalNo"`
	InvoiceNo              string           `json:"invoiceNo"`
	ReceiptDate            string           `json:"receiptDate"`
	ReceiptLines           []ReceiptLine    `json:"receiptLines"`
	ReceiptTaxes           []ReceiptTax     `json:"receiptTaxes"`
	ReceiptPayments        []ReceiptPayment `json:"receiptPayments"`
	ReceiptTotal           float64          `json:"receiptTotal"`
	ReceiptDeviceSignature *DeviceSignature `json:"receiptDeviceSignature,omitempty"`
}

type ReceiptLine struct {
	ReceiptLineType     LineType `json:"receiptLineType"`
	ReceiptLineNo       int      `json:"receiptLineNo"`
	ReceiptLineName     string   `json:"receiptLineName"`
	ReceiptLinePrice    float64  `json:"receiptLinePrice"`
	ReceiptLineQuantity float64  `json:"receiptLineQuantity"`
	ReceiptLineTotal    float64  `json:"receiptLineTotal"`
	TaxID               int      `json:"taxID"`
	TaxCode             string   `json:"taxCode"`
	TaxPercent          float64  `json:"taxPercent"`
}

// ReceiptTax is one aggregated entry per distinct tax rate on the receipt.
type ReceiptTax struct {
	TaxID              int     `json:"taxID"`
	TaxCode            string  `json:"taxCode"`
	TaxPercent         float64 `json:"taxPercent"`
	TaxAmount          float64 `json:"taxAmount"`
	SalesAmountWithTax float64 `json:"salesAmountWithTax"`
}

type ReceiptPayment struct {
	MoneyTypeCode MoneyType `json:"moneyTypeCode"`
	PaymentAmount float64   `json:"paymentAmount"`
}

// DeviceSignature binds one Receipt into the device's hash chain. Hash is the
// base64 SHA-256 of the canonical signable fields plus the previous receipt's
// hash, and is the chain-link input for the next receipt.
type DeviceSignature struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}
