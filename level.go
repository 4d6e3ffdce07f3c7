package lob

import "github.com/huandu/skiplist"

// priceLevel holds all resting orders that share one price on one side,
// in strict arrival order. The head is the order with the highest time
// priority. Orders are intrusive list nodes, so append, remove and front
// are all O(1).
type priceLevel struct {
	price    int64
	head     *Order
	tail     *Order
	count    int64
	totalQty int64 // sum of Remaining over all orders in the level

	// Back-reference into the side's skiplist so an emptied level can be
	// pruned without a second lookup.
	elem *skiplist.Element
}

// append adds an order to the tail of the level, preserving arrival order.
func (l *priceLevel) append(order *Order) {
	order.prev = l.tail
	order.next = nil
	if l.tail != nil {
		l.tail.next = order
	}
	l.tail = order
	if l.head == nil {
		l.head = order
	}
	order.level = l
	l.count++
	l.totalQty += order.Remaining
}

// remove unlinks an order from the level. The order may sit anywhere in
// the queue; the intrusive pointers make this O(1).
func (l *priceLevel) remove(order *Order) {
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		l.head = order.next
	}

	if order.next != nil {
		order.next.prev = order.prev
	} else {
		l.tail = order.prev
	}

	// Clear pointers to avoid leaks
	order.next = nil
	order.prev = nil
	order.level = nil

	l.count--
	l.totalQty -= order.Remaining
}

// reduce shrinks an order's remaining quantity in place, keeping its
// position in the queue and the level aggregate consistent.
func (l *priceLevel) reduce(order *Order, qty int64) {
	order.Remaining -= qty
	l.totalQty -= qty
}

// front returns the order with the highest time priority at this price,
// or nil if the level is empty.
func (l *priceLevel) front() *Order {
	return l.head
}

func (l *priceLevel) isEmpty() bool {
	return l.count == 0
}
