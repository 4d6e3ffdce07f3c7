package lob

const (
	// SnapshotSchemaVersion is the current version of the snapshot schema.
	// Increment this when the snapshot format changes in a backward-incompatible way.
	SnapshotSchemaVersion = 1
)

// BookSnapshot contains the full state of a single Book: every resting
// order in priority order per side plus the sequence counters. It is the
// hand-off format for external journaling and recovery collaborators; the
// book itself does no durable I/O.
type BookSnapshot struct {
	SchemaVersion int     `json:"schema_version"`
	Symbol        string  `json:"symbol"`
	SequenceID    uint64  `json:"seq_id"`
	TradeID       uint64  `json:"trade_id"`
	Bids          []Order `json:"bids"` // best price first, FIFO within a level
	Asks          []Order `json:"asks"`
}

// Snapshot captures a consistent copy of the book state. It takes the read
// lock, so it never observes a half-applied mutation.
func (b *Book) Snapshot() *BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &BookSnapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Symbol:        b.symbol,
		SequenceID:    b.seqID.Load(),
		TradeID:       b.tradeID.Load(),
		Bids:          b.bids.ordersInPriority(),
		Asks:          b.asks.ordersInPriority(),
	}
}

// Restore resets the book and rebuilds it from a snapshot. Orders are
// inserted in the stored priority order, bypassing matching.
func (b *Book) Restore(snap *BookSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seqID.Store(snap.SequenceID)
	b.tradeID.Store(snap.TradeID)

	b.bids = newBidSide()
	b.asks = newAskSide()
	b.index = newOrderIndex()

	restore := func(states []Order, side *bookSide) {
		for i := range states {
			order := states[i]
			side.insert(&order)
			b.index.insert(&order)
		}
	}

	restore(snap.Bids, b.bids)
	restore(snap.Asks, b.asks)
}
