package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
)

// business logic errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid auction state")
	ErrBidTooLow    = errors.New("bid amount too low")
	ErrUnauthorized = errors.New("not authorized")
	ErrConflict     = errors.New("conflicting concurrent update")
	ErrDependency   = errors.New("dependency unavailable")
)
