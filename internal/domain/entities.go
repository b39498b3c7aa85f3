package domain

import (
	"time"
)

// Item is a single auction listing. Owner is immutable after creation.
// HighestBidder and NewOwner use the empty string to mean "no one";
// caller identities are validated non-empty at the dispatch boundary.
type Item struct {
	ID                uint64 `json:"id"`
	Owner             string `json:"owner"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	CurrentHighestBid uint64 `json:"current_highest_bid"`
	HighestBidder     string `json:"highest_bidder,omitempty"`
	Active            bool   `json:"active"`
	NewOwner          string `json:"new_owner,omitempty"`
}

// Bid is one bidder's live bid on an item. A later bid by the same
// bidder replaces the earlier one in the item's ledger.
type Bid struct {
	Bidder string `json:"bidder"`
	Amount uint64 `json:"amount"`
}

type LedgerEvent struct {
	ID        string          `json:"id"`
	Type      LedgerEventType `json:"type"`
	ItemID    uint64          `json:"item_id"`
	Actor     string          `json:"actor"`
	Amount    uint64          `json:"amount,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type LedgerEventType string

const (
	ItemListed     LedgerEventType = "item_listed"
	BidPlaced      LedgerEventType = "bid_placed"
	ListingUpdated LedgerEventType = "listing_updated"
	ListingStopped LedgerEventType = "listing_stopped"
)
