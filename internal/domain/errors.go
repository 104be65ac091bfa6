package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrDecode is returned when a packed on-chain value cannot be decoded
	ErrDecode = errors.New("decode error")

	// ErrReverted is returned when a contract read reverts
	ErrReverted = errors.New("contract call reverted")

	// ErrMarketNotFound is returned when a maturity does not line up with any active market
	ErrMarketNotFound = errors.New("market not found for maturity")

	// ErrUnknownEvent is returned when an event has no handler or an unknown signature
	ErrUnknownEvent = errors.New("unknown event")
)
