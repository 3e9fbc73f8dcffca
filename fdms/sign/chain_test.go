package sign

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
)

func testReceipt() *model.Receipt {
	return &model.Receipt{
		ReceiptType:     model.FiscalReceipt,
		ReceiptCurrency: "usd",
		ReceiptCounter:  45,
		ReceiptGlobalNo: 45,
		InvoiceNo:       "45",
		ReceiptDate:     "2026-02-18T10:30:00",
		ReceiptTotal:    100.00,
		ReceiptTaxes: []model.ReceiptTax{
			{TaxID: 3, TaxCode: "B", TaxPercent: 15, TaxAmount: 15.00, SalesAmountWithTax: 115.00},
			{TaxID: 1, TaxCode: "A", TaxPercent: 0, TaxAmount: 0, SalesAmountWithTax: 0},
		},
	}
}

func TestCanonicalPayloadOrder(t *testing.T) {

	payload := canonicalPayload(321, testReceipt(), "prevhash")

	// taxes sorted by taxId, percents at 2 decimals, amounts in cents,
	// previous hash last
	assert.Equal(t, "321FISCALRECEIPTUSD452026-02-18T10:30:0010000A0.0000B15.00150011500prevhash", payload)
}

func TestCanonicalPayloadEmptyPreviousHash(t *testing.T) {

	payload := canonicalPayload(321, testReceipt(), "")
	assert.Equal(t, "321FISCALRECEIPTUSD452026-02-18T10:30:0010000A0.0000B15.00150011500", payload)
}

func TestBuildHashIsDeterministic(t *testing.T) {

	signer := Placeholder()

	first, err := Build(321, testReceipt(), "prev", signer)
	assert.NoError(t, err)

	second, err := Build(321, testReceipt(), "prev", signer)
	assert.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
}

func TestBuildHashChangesWithPreviousHash(t *testing.T) {

	signer := Placeholder()

	first, err := Build(321, testReceipt(), "", signer)
	assert.NoError(t, err)

	chained, err := Build(321, testReceipt(), first.Hash, signer)
	assert.NoError(t, err)

	assert.NotEqual(t, first.Hash, chained.Hash)
}

func TestBuildHashIsSHA256OfPayload(t *testing.T) {

	r := testReceipt()
	sig, err := Build(321, r, "prev", Placeholder())
	assert.NoError(t, err)

	expected := sha256.Sum256([]byte(canonicalPayload(321, r, "prev")))
	assert.Equal(t, base64.StdEncoding.EncodeToString(expected[:]), sig.Hash)
}

func TestTaxSortingDoesNotMutateReceipt(t *testing.T) {

	r := testReceipt()
	_, err := Build(321, r, "", Placeholder())
	assert.NoError(t, err)

	assert.Equal(t, 3, r.ReceiptTaxes[0].TaxID, "receipt taxes reordered in place")
}
