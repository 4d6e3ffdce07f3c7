package lob

import (
	"sync"
	"sync/atomic"
)

// Engine manages one independent Book per symbol. Books share no mutable
// state, so a multi-symbol deployment gets horizontal concurrency for
// free: each book has its own gate and its own sequence space.
type Engine struct {
	isShutdown atomic.Bool
	books      sync.Map
	publish    PublishLog
}

// NewEngine creates a new matching engine instance.
func NewEngine(publish PublishLog) *Engine {
	return &Engine{
		publish: publish,
	}
}

// CreateBook creates the order book for a symbol. If the book already
// exists the existing instance is returned.
func (e *Engine) CreateBook(symbol string, opts ...BookOption) (*Book, error) {
	if e.isShutdown.Load() {
		return nil, ErrShutdown
	}

	if symbol == "" {
		return nil, ErrInvalidParam
	}

	newbook := NewBook(symbol, e.publish, opts...)
	actual, loaded := e.books.LoadOrStore(symbol, newbook)
	if loaded {
		logger.Warn("book already exists", "symbol", symbol)
	}

	book, _ := actual.(*Book)
	return book, nil
}

// Book retrieves the order book for a symbol, or nil if it does not exist.
func (e *Engine) Book(symbol string) *Book {
	book, found := e.books.Load(symbol)
	if !found {
		return nil
	}

	orderbook, _ := book.(*Book)
	return orderbook
}

// Submit routes a submission to the symbol's book.
func (e *Engine) Submit(symbol string, cmd *SubmitCommand) (*SubmitResult, error) {
	if e.isShutdown.Load() {
		return nil, ErrShutdown
	}

	book := e.Book(symbol)
	if book == nil {
		return nil, ErrBookNotFound
	}

	return book.Submit(cmd)
}

// Cancel routes a cancellation to the symbol's book.
func (e *Engine) Cancel(symbol string, orderID string) (int64, error) {
	if e.isShutdown.Load() {
		return 0, ErrShutdown
	}

	book := e.Book(symbol)
	if book == nil {
		return 0, ErrBookNotFound
	}

	return book.Cancel(orderID)
}

// Amend routes a reduce-only amendment to the symbol's book.
func (e *Engine) Amend(symbol string, orderID string, newQuantity int64) (int64, error) {
	if e.isShutdown.Load() {
		return 0, ErrShutdown
	}

	book := e.Book(symbol)
	if book == nil {
		return 0, ErrBookNotFound
	}

	return book.Amend(orderID, newQuantity)
}

// BestBidAsk queries the symbol's book.
func (e *Engine) BestBidAsk(symbol string) (Quote, error) {
	book := e.Book(symbol)
	if book == nil {
		return Quote{}, ErrBookNotFound
	}

	return book.BestBidAsk(), nil
}

// Depth queries the symbol's book.
func (e *Engine) Depth(symbol string, levels int) (*Depth, error) {
	book := e.Book(symbol)
	if book == nil {
		return nil, ErrBookNotFound
	}

	return book.Depth(levels)
}

// Shutdown closes all books. Mutations submitted afterwards fail with
// ErrShutdown; queries keep serving the final state.
func (e *Engine) Shutdown() {
	e.isShutdown.Store(true)

	e.books.Range(func(key, value any) bool {
		book, _ := value.(*Book)
		book.Close()
		return true
	})
}
