package draft

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is the payment-step summary over committed services. Amount is the
// raw sum archived with the order; AmountDue applies each line's percentage
// discount: price x quantity - price x discount / 100.
type Totals struct {
	ItemsCount int32
	Amount     decimal.Decimal
	AmountDue  decimal.Decimal
}

// Totals sums the committed services. The scratch service is not counted.
func (d *Draft) Totals() Totals {
	t := Totals{Amount: decimal.Zero, AmountDue: decimal.Zero}
	for i := range d.Services {
		s := &d.Services[i]
		qty := decimal.NewFromInt32(s.Quantity)
		line := s.PriceInput.Mul(qty)
		t.ItemsCount += s.Quantity
		t.Amount = t.Amount.Add(line)
		t.AmountDue = t.AmountDue.Add(line.Sub(s.PriceInput.Mul(s.Discount).Div(hundred)))
	}
	return t
}
