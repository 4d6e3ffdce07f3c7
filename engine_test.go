package lob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRouting(t *testing.T) {
	publish := NewMemoryPublishLog()
	engine := NewEngine(publish)

	_, err := engine.CreateBook("BTC-USDT")
	require.NoError(t, err)
	_, err = engine.CreateBook("ETH-USDT")
	require.NoError(t, err)

	res, err := engine.Submit("BTC-USDT", &SubmitCommand{OrderID: "order1", Side: Buy, Price: 100, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)

	res, err = engine.Submit("ETH-USDT", &SubmitCommand{OrderID: "order2", Side: Sell, Price: 110, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)

	// Books are independent: the ETH sell never crosses the BTC buy
	quote, err := engine.BestBidAsk("BTC-USDT")
	require.NoError(t, err)
	assert.True(t, quote.HasBid)
	assert.False(t, quote.HasAsk)

	depth, err := engine.Depth("ETH-USDT", 5)
	require.NoError(t, err)
	assert.Empty(t, depth.Bids)
	require.Len(t, depth.Asks, 1)

	cancelled, err := engine.Cancel("BTC-USDT", "order1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)

	remaining, err := engine.Amend("ETH-USDT", "order2", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestEngineBookNotFound(t *testing.T) {
	engine := NewEngine(NewMemoryPublishLog())

	_, err := engine.Submit("NON-EXISTENT", &SubmitCommand{Side: Buy, Price: 100, Quantity: 1})
	assert.Equal(t, ErrBookNotFound, err)

	_, err = engine.Cancel("NON-EXISTENT", "o1")
	assert.Equal(t, ErrBookNotFound, err)

	_, err = engine.Amend("NON-EXISTENT", "o1", 1)
	assert.Equal(t, ErrBookNotFound, err)

	_, err = engine.BestBidAsk("NON-EXISTENT")
	assert.Equal(t, ErrBookNotFound, err)

	_, err = engine.Depth("NON-EXISTENT", 5)
	assert.Equal(t, ErrBookNotFound, err)

	assert.Nil(t, engine.Book("NON-EXISTENT"))
}

func TestEngineCreateBook(t *testing.T) {
	engine := NewEngine(NewMemoryPublishLog())

	_, err := engine.CreateBook("")
	assert.Equal(t, ErrInvalidParam, err)

	book1, err := engine.CreateBook("BTC-USDT")
	require.NoError(t, err)

	// Creating the same symbol again returns the existing instance
	book2, err := engine.CreateBook("BTC-USDT")
	require.NoError(t, err)
	assert.Same(t, book1, book2)
}

func TestEngineInstrumentOption(t *testing.T) {
	engine := NewEngine(NewMemoryPublishLog())

	tick := decimal.RequireFromString("0.01")
	lot := decimal.RequireFromString("0.001")
	book, err := engine.CreateBook("BTC-USDT", WithInstrument(NewInstrument("BTC-USDT", tick, lot)))
	require.NoError(t, err)

	assert.True(t, book.Instrument().PriceOf(10050).Equal(decimal.RequireFromString("100.50")))
	assert.True(t, book.Instrument().SizeOf(1500).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, book.Instrument().NotionalOf(10050, 1000).Equal(decimal.RequireFromString("100.50")))
}

func TestEngineShutdown(t *testing.T) {
	engine := NewEngine(NewMemoryPublishLog())

	symbols := []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"}
	for _, symbol := range symbols {
		_, err := engine.CreateBook(symbol)
		require.NoError(t, err)

		_, err = engine.Submit(symbol, &SubmitCommand{Side: Buy, Price: 100, Quantity: 1})
		require.NoError(t, err)
	}

	engine.Shutdown()

	for _, symbol := range symbols {
		_, err := engine.Submit(symbol, &SubmitCommand{Side: Buy, Price: 100, Quantity: 1})
		assert.Equal(t, ErrShutdown, err)

		// Final state is still queryable
		quote, err := engine.BestBidAsk(symbol)
		require.NoError(t, err)
		assert.True(t, quote.HasBid)
	}

	_, err := engine.CreateBook("NEW-MARKET")
	assert.Equal(t, ErrShutdown, err)
}
