package assemble

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/money"
)

// Breakdown aggregates line amounts into one entry per distinct tax rate.
// Lines missing their tax id or code are resolved against the active rate
// table; lines that resolve to no rate at all contribute no entry. The result
// is sorted by (taxID, taxCode), matching the signature canonicalization.
func Breakdown(lines []model.SaleLine, rates []model.TaxRate) []model.ReceiptTax {
	type key struct {
		id   int
		code string
	}

	taxable := map[key]decimal.Decimal{}
	percent := map[key]float64{}

	for _, l := range lines {
		id, code, rate, ok := resolveRate(l, rates)
		if !ok {
			continue
		}
		k := key{id: id, code: code}
		taxable[k] = taxable[k].Add(money.Round2(decimal.NewFromFloat(l.LineTotal)))
		percent[k] = rate
	}

	entries := make([]model.ReceiptTax, 0, len(taxable))
	for k, amount := range taxable {
		rate := decimal.NewFromFloat(percent[k])
		tax := money.Round2(amount.Mul(rate).Div(decimal.NewFromInt(100)))
		gross := amount.Add(tax)

		entries = append(entries, model.ReceiptTax{
			TaxID:              k.id,
			TaxCode:            k.code,
			TaxPercent:         money.Round2Float(percent[k]),
			TaxAmount:          toFloat(tax),
			SalesAmountWithTax: toFloat(money.Round2(gross)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TaxID != entries[j].TaxID {
			return entries[i].TaxID < entries[j].TaxID
		}
		return entries[i].TaxCode < entries[j].TaxCode
	})

	return entries
}

func resolveRate(l model.SaleLine, rates []model.TaxRate) (id int, code string, rate float64, ok bool) {
	if l.TaxID > 0 && l.TaxCode != "" {
		return l.TaxID, l.TaxCode, l.TaxRate, true
	}

	for _, r := range rates {
		if l.TaxCode != "" && r.Code == l.TaxCode {
			return r.ID, r.Code, r.Rate, true
		}
		if l.TaxID > 0 && r.ID == l.TaxID {
			return r.ID, r.Code, r.Rate, true
		}
	}

	// Line carries a rate but no id/code and the rate table has no match.
	if l.TaxCode != "" || l.TaxID > 0 {
		return l.TaxID, l.TaxCode, l.TaxRate, true
	}
	return 0, "", 0, false
}
