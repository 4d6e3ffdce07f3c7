package lob

import (
	"testing"

	"github.com/rs/xid"
)

func BenchmarkSubmitResting(b *testing.B) {
	book := NewBook("BENCH", NewDiscardPublishLog())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.Submit(&SubmitCommand{
			OrderID:  xid.New().String(),
			Side:     Buy,
			Price:    int64(1 + i%1000),
			Quantity: 1,
		})
	}
}

func BenchmarkSubmitCrossing(b *testing.B) {
	book := NewBook("BENCH", NewDiscardPublishLog())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := Buy
		if i%2 == 1 {
			side = Sell
		}
		_, _ = book.Submit(&SubmitCommand{
			OrderID:  xid.New().String(),
			Side:     side,
			Price:    100,
			Quantity: 1,
		})
	}
}

func BenchmarkCancel(b *testing.B) {
	book := NewBook("BENCH", NewDiscardPublishLog())

	ids := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		id := xid.New().String()
		ids[i] = id
		_, _ = book.Submit(&SubmitCommand{
			OrderID:  id,
			Side:     Buy,
			Price:    int64(1 + i%1000),
			Quantity: 1,
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.Cancel(ids[i])
	}
}

func BenchmarkBestBidAsk(b *testing.B) {
	book := NewBook("BENCH", NewDiscardPublishLog())
	for i := 0; i < 1000; i++ {
		_, _ = book.Submit(&SubmitCommand{Side: Buy, Price: int64(1 + i), Quantity: 1})
		_, _ = book.Submit(&SubmitCommand{Side: Sell, Price: int64(2000 + i), Quantity: 1})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = book.BestBidAsk()
	}
}
