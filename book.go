package lob

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
)

// SubmitCommand is the input for placing a limit order.
// OrderID is optional; when empty the book assigns one.
type SubmitCommand struct {
	OrderID  string `json:"order_id,omitempty"`
	Side     Side   `json:"side"`
	Price    int64  `json:"price"`    // limit price in ticks
	Quantity int64  `json:"quantity"` // quantity in lots
}

// SubmitResult reports the outcome of a submission: the assigned order id,
// the trades generated (possibly none), and the submitted order's final
// state. Trades appear in sequence order.
type SubmitResult struct {
	OrderID    string      `json:"order_id"`
	SequenceID uint64      `json:"seq_id"`
	Trades     []Trade     `json:"trades,omitempty"`
	Status     OrderStatus `json:"status"`
	Remaining  int64       `json:"remaining"`
}

// Quote is the best bid/ask pair. HasBid/HasAsk are false when the
// corresponding side is empty.
type Quote struct {
	BidPrice int64 `json:"bid_price"`
	AskPrice int64 `json:"ask_price"`
	HasBid   bool  `json:"has_bid"`
	HasAsk   bool  `json:"has_ask"`
}

// Depth is an aggregated view of the top levels of both sides.
type Depth struct {
	UpdateID uint64      `json:"update_id"`
	Bids     []DepthItem `json:"bids"`
	Asks     []DepthItem `json:"asks"`
}

// BookStats contains usage statistics about the order book.
type BookStats struct {
	BidLevelCount int64
	BidOrderCount int64
	AskLevelCount int64
	AskOrderCount int64
}

// Book is a single-symbol limit order book with price-time priority.
//
// A single RWMutex gates both sides and the order index as one unit:
// Submit, Cancel and Amend hold the write lock for their whole multi-step
// operation, so partial states are never observable and concurrent
// mutations are linearizable in sequence-number order. Read-only queries
// take the read lock. Nothing under the gate blocks on I/O; hold times
// are bounded by the crossing depth of a single submission.
type Book struct {
	symbol     string
	instrument *Instrument
	seqID      atomic.Uint64 // allocated once per emitted event
	tradeID    atomic.Uint64 // only incremented for Match events
	closed     atomic.Bool

	mu      sync.RWMutex
	bids    *bookSide
	asks    *bookSide
	index   *orderIndex
	publish PublishLog
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithInstrument sets the tick/lot scaling used on outbound events.
func WithInstrument(ins *Instrument) BookOption {
	return func(b *Book) {
		b.instrument = ins
	}
}

// NewBook creates a new order book for one symbol. publish may be nil if
// no downstream consumer is attached.
func NewBook(symbol string, publish PublishLog, opts ...BookOption) *Book {
	b := &Book{
		symbol:     symbol,
		instrument: DefaultInstrument(symbol),
		bids:       newBidSide(),
		asks:       newAskSide(),
		index:      newOrderIndex(),
		publish:    publish,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Symbol returns the symbol this book trades.
func (b *Book) Symbol() string {
	return b.symbol
}

// Instrument returns the tick/lot scaling of this book.
func (b *Book) Instrument() *Instrument {
	return b.instrument
}

// Close marks the book as shut down. Subsequent mutations fail with
// ErrShutdown; queries keep working on the final state.
func (b *Book) Close() {
	b.closed.Store(true)
}

// Submit places a limit order. It matches against the opposite side while
// prices cross, trading at the resting order's price, and rests any
// leftover quantity on its own side. The returned trades are emitted to
// the publisher, in sequence order, before Submit returns.
//
// Validation failures happen before a sequence number is assigned and
// leave no trace in the book or the event stream.
func (b *Book) Submit(cmd *SubmitCommand) (*SubmitResult, error) {
	if b.closed.Load() {
		return nil, ErrShutdown
	}

	if cmd == nil {
		return nil, ErrInvalidParam
	}

	if cmd.Side != Buy && cmd.Side != Sell {
		return nil, ErrInvalidOrder
	}

	if cmd.Price <= 0 || cmd.Quantity <= 0 {
		return nil, ErrInvalidOrder
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// A live duplicate would break the index bijection.
	if cmd.OrderID != "" && b.index.lookup(cmd.OrderID) != nil {
		return nil, ErrInvalidOrder
	}

	id := cmd.OrderID
	if id == "" {
		id = xid.New().String()
	}

	order := &Order{
		ID:        id,
		Side:      cmd.Side,
		Price:     cmd.Price,
		Quantity:  cmd.Quantity,
		Remaining: cmd.Quantity,
		Seq:       b.seqID.Add(1),
		Status:    StatusActive,
		Timestamp: time.Now().UnixNano(),
	}

	var mySide, oppSide *bookSide
	if order.Side == Buy {
		mySide = b.bids
		oppSide = b.asks
	} else {
		mySide = b.asks
		oppSide = b.bids
	}

	// The submission's first event reuses the order's sequence number so
	// the published stream stays gapless.
	firstEvent := true
	nextSeq := func() uint64 {
		if firstEvent {
			firstEvent = false
			return order.Seq
		}
		return b.seqID.Add(1)
	}

	var trades []Trade
	logs := make([]*BookLog, 0, 4)

	for order.Remaining > 0 {
		lvl := oppSide.bestLevel()
		if lvl == nil || !crosses(order.Side, order.Price, lvl.price) {
			break
		}

		// Oldest order at the best opposite price: time priority.
		resting := lvl.front()

		qty := min(order.Remaining, resting.Remaining)
		tradePrice := resting.Price // passive price wins

		order.Remaining -= qty
		lvl.reduce(resting, qty)

		seq := nextSeq()
		tradeID := b.tradeID.Add(1)

		buyID, sellID := order.ID, resting.ID
		if order.Side == Sell {
			buyID, sellID = resting.ID, order.ID
		}

		trades = append(trades, Trade{
			SequenceID:  seq,
			TradeID:     tradeID,
			BuyOrderID:  buyID,
			SellOrderID: sellID,
			Price:       tradePrice,
			Quantity:    qty,
			TakerSide:   order.Side,
		})
		logs = append(logs, newMatchLog(seq, tradeID, b.symbol, b.instrument, order, resting, tradePrice, qty))

		if resting.Remaining == 0 {
			// Removing the front order prunes the level when it empties,
			// which rebases the opposite side's best automatically.
			oppSide.remove(resting)
			b.index.remove(resting.ID)
			resting.Status = StatusFilled
		} else {
			resting.Status = StatusPartiallyFilled
		}
	}

	if order.Remaining > 0 {
		if len(trades) > 0 {
			order.Status = StatusPartiallyFilled
		}
		mySide.insert(order)
		b.index.insert(order)
		logs = append(logs, newOpenLog(nextSeq(), b.symbol, b.instrument, order))
	} else {
		order.Status = StatusFilled
	}

	b.publishLogs(logs)

	return &SubmitResult{
		OrderID:    order.ID,
		SequenceID: order.Seq,
		Trades:     trades,
		Status:     order.Status,
		Remaining:  order.Remaining,
	}, nil
}

// Cancel removes a resting order from the book. It is all-or-nothing:
// either the full remaining quantity is cancelled, or the call fails with
// ErrOrderNotFound. An unknown id, an already filled order and an already
// cancelled one are indistinguishable to the book.
func (b *Book) Cancel(orderID string) (int64, error) {
	if b.closed.Load() {
		return 0, ErrShutdown
	}

	if orderID == "" {
		return 0, ErrInvalidParam
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.index.lookup(orderID)
	if order == nil {
		return 0, ErrOrderNotFound
	}

	cancelled := b.cancelLocked(order)
	return cancelled, nil
}

// cancelLocked removes the order from its level and the index and marks it
// terminal. Caller must hold the write lock.
func (b *Book) cancelLocked(order *Order) int64 {
	side := b.bids
	if order.Side == Sell {
		side = b.asks
	}

	cancelled := order.Remaining

	side.remove(order)
	b.index.remove(order.ID)
	order.Remaining = 0
	order.Status = StatusCancelled

	log := newCancelLog(b.seqID.Add(1), b.symbol, b.instrument, order, cancelled)
	b.publishLogs([]*BookLog{log})

	return cancelled
}

// Amend reduces a resting order's remaining quantity in place, keeping its
// time priority. newQuantity == 0 is equivalent to Cancel. Increasing
// quantity (or changing price) forfeits priority and is modeled by the
// caller as cancel + submit, so it fails here with ErrInvalidAmend.
// Returns the new remaining quantity.
func (b *Book) Amend(orderID string, newQuantity int64) (int64, error) {
	if b.closed.Load() {
		return 0, ErrShutdown
	}

	if orderID == "" {
		return 0, ErrInvalidParam
	}

	if newQuantity < 0 {
		return 0, ErrInvalidAmend
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.index.lookup(orderID)
	if order == nil {
		return 0, ErrOrderNotFound
	}

	if newQuantity > order.Remaining {
		return 0, ErrInvalidAmend
	}

	if newQuantity == 0 {
		b.cancelLocked(order)
		return 0, nil
	}

	oldQty := order.Remaining
	order.level.reduce(order, oldQty-newQuantity)

	log := newAmendLog(b.seqID.Add(1), b.symbol, b.instrument, order, oldQty)
	b.publishLogs([]*BookLog{log})

	return order.Remaining, nil
}

// BestBidAsk returns the best price on each side.
func (b *Book) BestBidAsk() Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var quote Quote
	if lvl := b.bids.bestLevel(); lvl != nil {
		quote.BidPrice = lvl.price
		quote.HasBid = true
	}
	if lvl := b.asks.bestLevel(); lvl != nil {
		quote.AskPrice = lvl.price
		quote.HasAsk = true
	}

	return quote
}

// Depth returns up to levels aggregated price levels per side, best price
// first. The view is consistent: it never observes a half-applied mutation.
func (b *Book) Depth(levels int) (*Depth, error) {
	if levels <= 0 {
		return nil, ErrInvalidParam
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Depth{
		UpdateID: b.seqID.Load(),
		Bids:     b.bids.depth(levels),
		Asks:     b.asks.depth(levels),
	}, nil
}

// Order returns a copy of a resting order's state. ok is false when the
// order is unknown or terminal.
func (b *Book) Order(orderID string) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	order := b.index.lookup(orderID)
	if order == nil {
		return Order{}, false
	}

	cpy := *order
	cpy.next, cpy.prev, cpy.level = nil, nil, nil
	return cpy, true
}

// Stats returns usage statistics for the order book.
func (b *Book) Stats() BookStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BookStats{
		BidLevelCount: b.bids.levelCount(),
		BidOrderCount: b.bids.orderCount(),
		AskLevelCount: b.asks.levelCount(),
		AskOrderCount: b.asks.orderCount(),
	}
}

// publishLogs hands logs to the publisher and recycles them. Called with
// the write lock held so downstream consumers see events in sequence order
// with no interleaving between operations.
func (b *Book) publishLogs(logs []*BookLog) {
	if len(logs) == 0 {
		return
	}

	if b.publish != nil {
		b.publish.Publish(logs...)
	}

	for _, log := range logs {
		releaseBookLog(log)
	}
}
