package lob

import (
	"github.com/huandu/skiplist"
)

// DepthItem is one aggregated price level in a depth snapshot.
type DepthItem struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int64 `json:"orders"`
}

// bookSide is a price-ordered collection of price levels for one side of
// the book. The skiplist keeps the best price at the front (highest for
// bids, lowest for asks), so bestLevel is O(1) and insert stays O(log n).
type bookSide struct {
	side        Side
	totalOrders int64
	levels      *skiplist.SkipList
	byPrice     map[int64]*priceLevel
}

// newBidSide creates the buy side of a book.
// Levels are sorted by price in descending order (highest price first).
func newBidSide() *bookSide {
	return &bookSide{
		side: Buy,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 < p2 {
				return 1
			} else if p1 > p2 {
				return -1
			}

			return 0
		})),
		byPrice: make(map[int64]*priceLevel),
	}
}

// newAskSide creates the sell side of a book.
// Levels are sorted by price in ascending order (lowest price first).
func newAskSide() *bookSide {
	return &bookSide{
		side: Sell,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 > p2 {
				return 1
			} else if p1 < p2 {
				return -1
			}

			return 0
		})),
		byPrice: make(map[int64]*priceLevel),
	}
}

// bestLevel returns the level at the most favorable price, or nil if the
// side is empty.
func (s *bookSide) bestLevel() *priceLevel {
	el := s.levels.Front()
	if el == nil {
		return nil
	}

	lvl, _ := el.Value.(*priceLevel)
	return lvl
}

// insert appends an order to the level at its price, creating the level
// if this is the first order at that price.
func (s *bookSide) insert(order *Order) {
	lvl, ok := s.byPrice[order.Price]
	if !ok {
		lvl = &priceLevel{price: order.Price}
		lvl.elem = s.levels.Set(order.Price, lvl)
		s.byPrice[order.Price] = lvl
	}

	lvl.append(order)
	s.totalOrders++
}

// remove takes an order out of its level and prunes the level if it
// becomes empty.
func (s *bookSide) remove(order *Order) {
	lvl := order.level
	if lvl == nil {
		return
	}

	lvl.remove(order)
	s.totalOrders--

	if lvl.isEmpty() {
		s.levels.RemoveElement(lvl.elem)
		delete(s.byPrice, lvl.price)
	}
}

// orderCount returns the total number of resting orders on this side.
func (s *bookSide) orderCount() int64 {
	return s.totalOrders
}

// levelCount returns the number of price levels on this side.
func (s *bookSide) levelCount() int64 {
	return int64(s.levels.Len())
}

// depth returns up to limit aggregated levels, best price first.
func (s *bookSide) depth(limit int) []DepthItem {
	result := make([]DepthItem, 0, limit)

	el := s.levels.Front()
	for len(result) < limit && el != nil {
		lvl, _ := el.Value.(*priceLevel)
		result = append(result, DepthItem{
			Price:    lvl.price,
			Quantity: lvl.totalQty,
			Orders:   lvl.count,
		})
		el = el.Next()
	}

	return result
}

// ordersInPriority serializes the side into a slice of order states,
// walking levels best price first and each level in FIFO order.
func (s *bookSide) ordersInPriority() []Order {
	snapshots := make([]Order, 0, s.totalOrders)

	el := s.levels.Front()
	for el != nil {
		lvl, _ := el.Value.(*priceLevel)

		order := lvl.head
		for order != nil {
			snapshots = append(snapshots, Order{
				ID:        order.ID,
				Side:      order.Side,
				Price:     order.Price,
				Quantity:  order.Quantity,
				Remaining: order.Remaining,
				Seq:       order.Seq,
				Status:    order.Status,
				Timestamp: order.Timestamp,
			})
			order = order.next
		}

		el = el.Next()
	}

	return snapshots
}
