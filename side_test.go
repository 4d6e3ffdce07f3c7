package lob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id string, side Side, price, qty int64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		Status:    StatusActive,
	}
}

func TestPriceLevelFIFO(t *testing.T) {
	lvl := &priceLevel{price: 100}

	o1 := newTestOrder("o1", Buy, 100, 5)
	o2 := newTestOrder("o2", Buy, 100, 3)
	o3 := newTestOrder("o3", Buy, 100, 7)

	lvl.append(o1)
	lvl.append(o2)
	lvl.append(o3)

	assert.Equal(t, int64(3), lvl.count)
	assert.Equal(t, int64(15), lvl.totalQty)
	assert.Equal(t, "o1", lvl.front().ID)

	// Handle-based removal from the middle of the queue
	lvl.remove(o2)
	assert.Equal(t, int64(2), lvl.count)
	assert.Equal(t, int64(12), lvl.totalQty)
	assert.Equal(t, "o1", lvl.front().ID)
	assert.Equal(t, "o3", lvl.front().next.ID)

	lvl.remove(o1)
	assert.Equal(t, "o3", lvl.front().ID)

	lvl.remove(o3)
	assert.True(t, lvl.isEmpty())
	assert.Nil(t, lvl.front())
}

func TestPriceLevelReduce(t *testing.T) {
	lvl := &priceLevel{price: 100}

	o1 := newTestOrder("o1", Buy, 100, 10)
	lvl.append(o1)

	lvl.reduce(o1, 4)
	assert.Equal(t, int64(6), o1.Remaining)
	assert.Equal(t, int64(6), lvl.totalQty)
	assert.Equal(t, "o1", lvl.front().ID)
}

func TestBookSideOrdering(t *testing.T) {
	t.Run("bids best is highest", func(t *testing.T) {
		bids := newBidSide()
		bids.insert(newTestOrder("b1", Buy, 90, 1))
		bids.insert(newTestOrder("b2", Buy, 110, 1))
		bids.insert(newTestOrder("b3", Buy, 100, 1))

		require.NotNil(t, bids.bestLevel())
		assert.Equal(t, int64(110), bids.bestLevel().price)

		depth := bids.depth(10)
		require.Len(t, depth, 3)
		assert.Equal(t, int64(110), depth[0].Price)
		assert.Equal(t, int64(100), depth[1].Price)
		assert.Equal(t, int64(90), depth[2].Price)
	})

	t.Run("asks best is lowest", func(t *testing.T) {
		asks := newAskSide()
		asks.insert(newTestOrder("a1", Sell, 120, 1))
		asks.insert(newTestOrder("a2", Sell, 105, 1))
		asks.insert(newTestOrder("a3", Sell, 130, 1))

		require.NotNil(t, asks.bestLevel())
		assert.Equal(t, int64(105), asks.bestLevel().price)

		depth := asks.depth(2)
		require.Len(t, depth, 2)
		assert.Equal(t, int64(105), depth[0].Price)
		assert.Equal(t, int64(120), depth[1].Price)
	})
}

func TestBookSidePrune(t *testing.T) {
	asks := newAskSide()

	o1 := newTestOrder("a1", Sell, 100, 1)
	o2 := newTestOrder("a2", Sell, 100, 2)
	o3 := newTestOrder("a3", Sell, 110, 3)

	asks.insert(o1)
	asks.insert(o2)
	asks.insert(o3)

	assert.Equal(t, int64(2), asks.levelCount())
	assert.Equal(t, int64(3), asks.orderCount())

	// Emptying the best level rebases the best pointer
	asks.remove(o1)
	asks.remove(o2)
	assert.Equal(t, int64(1), asks.levelCount())
	assert.Equal(t, int64(110), asks.bestLevel().price)

	asks.remove(o3)
	assert.Equal(t, int64(0), asks.levelCount())
	assert.Nil(t, asks.bestLevel())
}

func TestBookSideAggregates(t *testing.T) {
	bids := newBidSide()
	bids.insert(newTestOrder("b1", Buy, 100, 5))
	bids.insert(newTestOrder("b2", Buy, 100, 7))

	depth := bids.depth(1)
	require.Len(t, depth, 1)
	assert.Equal(t, int64(12), depth[0].Quantity)
	assert.Equal(t, int64(2), depth[0].Orders)
}

func TestOrdersInPriority(t *testing.T) {
	bids := newBidSide()
	bids.insert(newTestOrder("b1", Buy, 100, 1))
	bids.insert(newTestOrder("b2", Buy, 110, 2))
	bids.insert(newTestOrder("b3", Buy, 100, 3))

	states := bids.ordersInPriority()
	require.Len(t, states, 3)

	// Best price first, FIFO within a level
	assert.Equal(t, "b2", states[0].ID)
	assert.Equal(t, "b1", states[1].ID)
	assert.Equal(t, "b3", states[2].ID)
}

func TestOrderIndex(t *testing.T) {
	idx := newOrderIndex()

	o1 := newTestOrder("o1", Buy, 100, 1)
	idx.insert(o1)

	assert.Equal(t, o1, idx.lookup("o1"))
	assert.Nil(t, idx.lookup("missing"))
	assert.Equal(t, 1, idx.size())

	idx.remove("o1")
	assert.Nil(t, idx.lookup("o1"))
	assert.Equal(t, 0, idx.size())
}
