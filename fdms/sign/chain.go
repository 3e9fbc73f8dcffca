package sign

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/money"
)

// Build computes the device signature for one receipt, linking it to the
// previous receipt's hash. previousHash is empty for the first receipt ever
// signed on the device.
//
// The hash is deterministic in its inputs; the signature may vary between
// calls when the key's scheme is randomized. Build never advances chain
// state — the orchestrator owns the last-hash pointer and moves it only after
// the server confirms acceptance, which keeps signing retry-safe.
func Build(deviceID int, r *model.Receipt, previousHash string, signer Signer) (*model.DeviceSignature, error) {
	payload := canonicalPayload(deviceID, r, previousHash)

	digest := sha256.Sum256([]byte(payload))

	sig, err := signer.Sign(digest[:])
	if err != nil {
		return nil, err
	}

	return &model.DeviceSignature{
		Hash:      base64.StdEncoding.EncodeToString(digest[:]),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// canonicalPayload concatenates the signable fields in the exact order the
// authority's verifier reproduces. Monetary values appear as integer cents
// (rounded to 2 decimals then scaled), never in their floating textual form.
func canonicalPayload(deviceID int, r *model.Receipt, previousHash string) string {
	var b strings.Builder

	b.WriteString(strconv.Itoa(deviceID))
	b.WriteString(strings.ToUpper(string(r.ReceiptType)))
	b.WriteString(strings.ToUpper(r.ReceiptCurrency))
	b.WriteString(strconv.FormatInt(r.ReceiptGlobalNo, 10))
	b.WriteString(r.ReceiptDate)
	b.WriteString(strconv.FormatInt(money.CentsFloat(r.ReceiptTotal), 10))

	taxes := make([]model.ReceiptTax, len(r.ReceiptTaxes))
	copy(taxes, r.ReceiptTaxes)
	sort.SliceStable(taxes, func(i, j int) bool {
		if taxes[i].TaxID != taxes[j].TaxID {
			return taxes[i].TaxID < taxes[j].TaxID
		}
		return taxes[i].TaxCode < taxes[j].TaxCode
	})

	for _, t := range taxes {
		b.WriteString(t.TaxCode)
		b.WriteString(money.Fixed2(decimal.NewFromFloat(t.TaxPercent)))
		b.WriteString(strconv.FormatInt(money.CentsFloat(t.TaxAmount), 10))
		b.WriteString(strconv.FormatInt(money.CentsFloat(t.SalesAmountWithTax), 10))
	}

	b.WriteString(previousHash)

	return b.String()
}
