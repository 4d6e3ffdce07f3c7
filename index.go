package lob

// orderIndex maps an order id to the live order resting in the book.
// An entry exists iff the order currently rests in a price level; the
// reference is non-owning (the level owns the order), it only provides
// O(1) lookup for cancel and amend. Every side insert or remove is paired
// with exactly one index insert or remove under the book's gate.
type orderIndex struct {
	m map[string]*Order
}

func newOrderIndex() *orderIndex {
	return &orderIndex{
		m: make(map[string]*Order),
	}
}

func (idx *orderIndex) insert(order *Order) {
	idx.m[order.ID] = order
}

// lookup returns the resting order for id, or nil if the order is unknown
// or already terminal.
func (idx *orderIndex) lookup(id string) *Order {
	return idx.m[id]
}

func (idx *orderIndex) remove(id string) {
	delete(idx.m, id)
}

func (idx *orderIndex) size() int {
	return len(idx.m)
}
