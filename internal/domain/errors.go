package domain

import "errors"

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrNotOwner        = errors.New("only the owner may perform this operation")
	ErrInactiveAuction = errors.New("auction for this item is no longer active")
	ErrAlreadyStopped  = errors.New("listing is already stopped")
	ErrSelfBid         = errors.New("cannot bid on your own item")
	ErrBidTooLow       = errors.New("bid must be higher than the current highest bid")
)

// ErrSnapshotCorrupted marks a snapshot that exists but cannot be
// decoded. Unlike the errors above it is not recoverable by the
// caller: starting with a partially decoded aggregate would silently
// discard committed state, so the process must abort.
var ErrSnapshotCorrupted = errors.New("snapshot corrupted")
