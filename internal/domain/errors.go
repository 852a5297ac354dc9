package domain

import "errors"

var (
	ErrNoData              = errors.New("no data")
	ErrInsufficientHistory = errors.New("insufficient price history")
	ErrUnknownStrategy     = errors.New("unknown strategy")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrNoPosition          = errors.New("no position")
	ErrUnpricedOrder       = errors.New("no price available for order")
	ErrInvalidOrder        = errors.New("invalid order parameters")
)
