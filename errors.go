package lob

import "errors"

var (
	ErrInvalidOrder  = errors.New("the order price or quantity is invalid")
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidAmend  = errors.New("amend may only reduce the remaining quantity")
	ErrInvalidParam  = errors.New("the param is invalid")
	ErrShutdown      = errors.New("book is shutting down")
	ErrBookNotFound  = errors.New("book not found")
	ErrSequenceGap   = errors.New("sequence gap detected")
)
