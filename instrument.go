package lob

import "github.com/shopspring/decimal"

// Instrument describes how a book's integer tick prices and lot quantities
// map to decimal values. The matching core only ever works with ticks and
// lots; conversion happens on outbound events and depth views.
type Instrument struct {
	Symbol   string          `json:"symbol"`
	TickSize decimal.Decimal `json:"tick_size"` // price of one tick
	LotSize  decimal.Decimal `json:"lot_size"`  // quantity of one lot
}

// NewInstrument creates an instrument with explicit tick and lot sizes.
func NewInstrument(symbol string, tickSize, lotSize decimal.Decimal) *Instrument {
	return &Instrument{
		Symbol:   symbol,
		TickSize: tickSize,
		LotSize:  lotSize,
	}
}

// DefaultInstrument creates an instrument where one tick is one currency
// unit and one lot is one unit of quantity.
func DefaultInstrument(symbol string) *Instrument {
	return NewInstrument(symbol, decimal.NewFromInt(1), decimal.NewFromInt(1))
}

// PriceOf converts a tick price to its decimal value.
func (ins *Instrument) PriceOf(ticks int64) decimal.Decimal {
	return ins.TickSize.Mul(decimal.NewFromInt(ticks))
}

// SizeOf converts a lot quantity to its decimal value.
func (ins *Instrument) SizeOf(lots int64) decimal.Decimal {
	return ins.LotSize.Mul(decimal.NewFromInt(lots))
}

// NotionalOf returns price * quantity in decimal terms.
func (ins *Instrument) NotionalOf(ticks, lots int64) decimal.Decimal {
	return ins.PriceOf(ticks).Mul(ins.SizeOf(lots))
}
