package lot

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalid          = errors.New("invalid input")
	ErrBucketNotEmpty   = errors.New("bucket has lots")
	ErrNotCancelable    = errors.New("only pending orders can be canceled")
	ErrNotLiquidatable  = errors.New("only open positions can be liquidated")
	ErrLotClosed        = errors.New("lot is closed")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrQuoteUnavailable = errors.New("quote unavailable")
)
