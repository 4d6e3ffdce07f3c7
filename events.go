package lob

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type LogType string

const (
	LogTypeOpen   LogType = "open"
	LogTypeMatch  LogType = "match"
	LogTypeCancel LogType = "cancel"
	LogTypeAmend  LogType = "amend"
)

// Trade is the immutable execution record returned synchronously from
// Submit. Price is the resting order's price; SequenceID is the sequence
// number of the match event that produced it. Trades are never revised
// once emitted.
type Trade struct {
	SequenceID  uint64 `json:"seq_id"`
	TradeID     uint64 `json:"trade_id"`
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	Price       int64  `json:"price"`    // ticks
	Quantity    int64  `json:"quantity"` // lots
	TakerSide   Side   `json:"taker_side"`
}

// BookLog represents an event in the order book stream.
// SequenceID is a per-book increasing ID for every event, used for
// ordering, deduplication, and rebuild synchronization in downstream
// systems. The first event of a submission carries the submitted order's
// sequence number, so the stream has no gaps.
type BookLog struct {
	SequenceID   uint64          `json:"seq_id"`
	TradeID      uint64          `json:"trade_id,omitempty"` // only set for Match events
	Type         LogType         `json:"type"`
	Symbol       string          `json:"symbol"`
	Side         Side            `json:"side"`
	Price        decimal.Decimal `json:"price"`
	Size         decimal.Decimal `json:"size"`
	Amount       decimal.Decimal `json:"amount,omitempty"`   // Price * Size, only set for Match events
	OldSize      decimal.Decimal `json:"old_size,omitempty"` // only set for Amend events
	OrderID      string          `json:"order_id"`
	MakerOrderID string          `json:"maker_order_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	// Reset structure to zero values.
	// For decimal.Decimal, the zero value (nil internal pointer) represents 0, which is valid.
	*log = BookLog{}
	bookLogPool.Put(log)
}

// Clone returns a heap copy of the log that survives pool recycling.
func (log *BookLog) Clone() *BookLog {
	cpy := new(BookLog)
	*cpy = *log
	return cpy
}

func newOpenLog(seqID uint64, symbol string, ins *Instrument, order *Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeOpen
	log.Symbol = symbol
	log.Side = order.Side
	log.Price = ins.PriceOf(order.Price)
	log.Size = ins.SizeOf(order.Remaining)
	log.OrderID = order.ID
	log.CreatedAt = time.Now().UTC()
	return log
}

func newMatchLog(seqID uint64, tradeID uint64, symbol string, ins *Instrument, taker *Order, maker *Order, price int64, qty int64) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.TradeID = tradeID
	log.Type = LogTypeMatch
	log.Symbol = symbol
	log.Side = taker.Side
	log.Price = ins.PriceOf(price)
	log.Size = ins.SizeOf(qty)
	log.Amount = ins.NotionalOf(price, qty)
	log.OrderID = taker.ID
	log.MakerOrderID = maker.ID
	log.CreatedAt = time.Now().UTC()
	return log
}

func newCancelLog(seqID uint64, symbol string, ins *Instrument, order *Order, cancelledQty int64) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeCancel
	log.Symbol = symbol
	log.Side = order.Side
	log.Price = ins.PriceOf(order.Price)
	log.Size = ins.SizeOf(cancelledQty)
	log.OrderID = order.ID
	log.CreatedAt = time.Now().UTC()
	return log
}

func newAmendLog(seqID uint64, symbol string, ins *Instrument, order *Order, oldQty int64) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeAmend
	log.Symbol = symbol
	log.Side = order.Side
	log.Price = ins.PriceOf(order.Price)
	log.Size = ins.SizeOf(order.Remaining)
	log.OldSize = ins.SizeOf(oldQty)
	log.OrderID = order.ID
	log.CreatedAt = time.Now().UTC()
	return log
}
