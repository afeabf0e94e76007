package document

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotals holds the unrounded totals of one line
type LineTotals struct {
	Net   decimal.Decimal
	Vat   decimal.Decimal
	Gross decimal.Decimal
}

// Totals holds document totals rounded half away from zero to 2 decimal
// places, plus the unrounded per-line breakdown used to fill line columns.
type Totals struct {
	Net   decimal.Decimal
	Vat   decimal.Decimal
	Gross decimal.Decimal
	Lines []LineTotals
}

// CalculateLineTotals computes net, vat and gross for a single line
// without rounding. Rounding happens once, at the document level.
func CalculateLineTotals(line DocumentLine) LineTotals {
	discountFactor := decimal.NewFromInt(1).Sub(line.DiscountPct.Div(hundred))
	net := line.Quantity.Mul(line.UnitPrice).Mul(discountFactor)
	vat := net.Mul(decimal.NewFromInt(int64(line.VatRate))).Div(hundred)
	return LineTotals{
		Net:   net,
		Vat:   vat,
		Gross: net.Add(vat),
	}
}

// CalculateTotals sums the line totals and rounds the sums to 2 decimal
// places half away from zero. The caller guarantees the line list has
// been validated; an empty list yields zero totals and the posting guard
// rejects it separately.
func CalculateTotals(lines []DocumentLine) Totals {
	totals := Totals{
		Net:   decimal.Zero,
		Vat:   decimal.Zero,
		Gross: decimal.Zero,
		Lines: make([]LineTotals, 0, len(lines)),
	}
	net := decimal.Zero
	vat := decimal.Zero
	for _, line := range lines {
		lt := CalculateLineTotals(line)
		totals.Lines = append(totals.Lines, lt)
		net = net.Add(lt.Net)
		vat = vat.Add(lt.Vat)
	}
	totals.Net = net.Round(2)
	totals.Vat = vat.Round(2)
	// gross is the sum of the rounded components so that
	// gross == net + vat holds exactly at 2 decimal places
	totals.Gross = totals.Net.Add(totals.Vat)
	return totals
}
