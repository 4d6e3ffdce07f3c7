package lob

type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Opposite returns the side a taker order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderStatus string

const (
	StatusActive          OrderStatus = "active"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// Terminal reports whether no further operation is valid on an order in this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// Order represents the state of an order in the order book.
// Price is expressed in integer ticks and Quantity in integer lots; the
// Instrument of the owning book converts both to decimal for outbound events.
//
// Remaining only ever decreases, and reaches zero exactly when the order
// becomes Filled or Cancelled.
type Order struct {
	ID        string      `json:"id"`
	Side      Side        `json:"side"`
	Price     int64       `json:"price"`     // limit price in ticks, immutable
	Quantity  int64       `json:"quantity"`  // original quantity in lots, immutable
	Remaining int64       `json:"remaining"` // unfilled quantity in lots
	Seq       uint64      `json:"seq"`       // assigned at submission, establishes time priority
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"` // Unix nano, creation time

	// Intrusive linked list pointers and owning level handle (ignored by JSON).
	// The order itself is the FIFO node, so removal anywhere in the queue is O(1).
	next  *Order
	prev  *Order
	level *priceLevel
}

// crosses reports whether a taker at takerPrice can trade against a resting
// level at restingPrice.
func crosses(takerSide Side, takerPrice, restingPrice int64) bool {
	if takerSide == Buy {
		return takerPrice >= restingPrice
	}
	return takerPrice <= restingPrice
}
