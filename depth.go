package lob

import (
	"sync"
	"sync/atomic"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// DepthChange represents a change in the order book depth.
type DepthChange struct {
	Side     Side
	Price    decimal.Decimal
	SizeDiff decimal.Decimal
}

// CalculateDepthChange derives the depth delta carried by a book log.
// For LogTypeMatch the returned side is the maker's side, since matching
// consumes liquidity from the opposite side of the taker.
func CalculateDepthChange(log *BookLog) DepthChange {
	switch log.Type {
	case LogTypeOpen:
		return DepthChange{
			Side:     log.Side,
			Price:    log.Price,
			SizeDiff: log.Size,
		}
	case LogTypeCancel:
		return DepthChange{
			Side:     log.Side,
			Price:    log.Price,
			SizeDiff: log.Size.Neg(),
		}
	case LogTypeMatch:
		// log.Side is the taker's side, so update the opposite side.
		return DepthChange{
			Side:     log.Side.Opposite(),
			Price:    log.Price,
			SizeDiff: log.Size.Neg(),
		}
	case LogTypeAmend:
		// Amends are reduce-only and keep priority, so the delta is the
		// in-place difference.
		return DepthChange{
			Side:     log.Side,
			Price:    log.Price,
			SizeDiff: log.Size.Sub(log.OldSize),
		}
	}

	return DepthChange{}
}

// AggregatedLevel is one price level in an aggregated view.
type AggregatedLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// AggregatedBook maintains a simplified view of the order book, tracking
// only price levels and their aggregated sizes. It is designed for
// downstream services that rebuild book state from the BookLog stream,
// typically as the handler behind an AsyncPublishLog.
type AggregatedBook struct {
	seqID atomic.Uint64 // last applied SequenceID, for gap detection and deduplication

	mu  sync.RWMutex
	ask *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
	bid *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
}

// NewAggregatedBook creates a new AggregatedBook with empty sides.
func NewAggregatedBook() *AggregatedBook {
	less := func(a, b decimal.Decimal) bool {
		return a.LessThan(b)
	}

	return &AggregatedBook{
		ask: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](less),
		bid: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](less),
	}
}

// SequenceID returns the last applied sequence ID.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID.Load()
}

// OnEvent lets the AggregatedBook consume directly from a RingBuffer.
// Gaps are logged, not fatal: the consumer is expected to rebuild from a
// snapshot when it falls behind.
func (ab *AggregatedBook) OnEvent(log *BookLog) {
	if err := ab.Apply(log); err != nil {
		logger.Error("failed to apply book log", "error", err, "seq_id", log.SequenceID)
	}
}

// Apply updates the aggregated state with one BookLog. Events at or below
// the last applied sequence are skipped (deduplication); a sequence gap
// returns ErrSequenceGap without mutating state.
func (ab *AggregatedBook) Apply(log *BookLog) error {
	last := ab.seqID.Load()
	if log.SequenceID <= last {
		return nil
	}
	if last != 0 && log.SequenceID != last+1 {
		return ErrSequenceGap
	}

	change := CalculateDepthChange(log)
	if !change.SizeDiff.IsZero() {
		ab.applyChange(change)
	}

	ab.seqID.Store(log.SequenceID)
	return nil
}

func (ab *AggregatedBook) applyChange(change DepthChange) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	tm := ab.bid
	if change.Side == Sell {
		tm = ab.ask
	}

	size, _ := tm.Get(change.Price)
	size = size.Add(change.SizeDiff)

	if size.IsPositive() {
		tm.Set(change.Price, size)
	} else {
		tm.Del(change.Price)
	}
}

// Rebuild resets the aggregated book from a snapshot. Call this before
// replaying events that follow the snapshot's sequence ID.
func (ab *AggregatedBook) Rebuild(snap *BookSnapshot, ins *Instrument) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	less := func(a, b decimal.Decimal) bool {
		return a.LessThan(b)
	}
	ab.bid = treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](less)
	ab.ask = treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](less)

	load := func(orders []Order, tm *treemap.TreeMap[decimal.Decimal, decimal.Decimal]) {
		for i := range orders {
			price := ins.PriceOf(orders[i].Price)
			size, _ := tm.Get(price)
			tm.Set(price, size.Add(ins.SizeOf(orders[i].Remaining)))
		}
	}

	load(snap.Bids, ab.bid)
	load(snap.Asks, ab.ask)

	ab.seqID.Store(snap.SequenceID)
}

// Size returns the aggregated size at a price level, or zero if the level
// does not exist.
func (ab *AggregatedBook) Size(side Side, price decimal.Decimal) decimal.Decimal {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	tm := ab.bid
	if side == Sell {
		tm = ab.ask
	}

	size, _ := tm.Get(price)
	return size
}

// TopLevels returns up to limit levels for a side, best price first:
// descending for bids, ascending for asks.
func (ab *AggregatedBook) TopLevels(side Side, limit int) []AggregatedLevel {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	result := make([]AggregatedLevel, 0, limit)

	if side == Buy {
		for it := ab.bid.Reverse(); it.Valid() && len(result) < limit; it.Next() {
			result = append(result, AggregatedLevel{Price: it.Key(), Size: it.Value()})
		}
		return result
	}

	for it := ab.ask.Iterator(); it.Valid() && len(result) < limit; it.Next() {
		result = append(result, AggregatedLevel{Price: it.Key(), Size: it.Value()})
	}
	return result
}
