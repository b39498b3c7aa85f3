package ledger

import (
	"sort"
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

// Store is the single source of truth for all items and bids. Every
// operation runs to completion under one mutex: no read-validate-write
// sequence ever interleaves with another, and validation finishes
// before the first field is written, so a failed call leaves the
// aggregate untouched.
type Store struct {
	mu         sync.Mutex
	items      map[uint64]*domain.Item
	itemBids   map[uint64]map[string]domain.Bid
	nextItemID uint64
	log        logger.Logger
}

func NewStore(log logger.Logger) *Store {
	return &Store{
		items:    make(map[uint64]*domain.Item),
		itemBids: make(map[uint64]map[string]domain.Bid),
		log:      log,
	}
}

// ListItem creates a new active listing owned by caller and returns
// its id. Ids are allocated from a global counter and never reused.
func (s *Store) ListItem(caller, name, description string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemID := s.nextItemID
	s.nextItemID++

	s.items[itemID] = &domain.Item{
		ID:          itemID,
		Owner:       caller,
		Name:        name,
		Description: description,
		Active:      true,
	}
	s.itemBids[itemID] = make(map[string]domain.Bid)

	s.log.Info("Item listed", "item_id", itemID, "owner", caller)
	return itemID
}

// BidForItem records caller's bid on an item. The amount must
// strictly exceed the current highest bid; equal bids are rejected.
// A bidder's previous bid on the same item is overwritten.
func (s *Store) BidForItem(caller string, itemID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if !item.Active {
		return domain.ErrInactiveAuction
	}
	if item.Owner == caller {
		return domain.ErrSelfBid
	}
	if amount <= item.CurrentHighestBid {
		return domain.ErrBidTooLow
	}

	item.CurrentHighestBid = amount
	item.HighestBidder = caller

	bids, ok := s.itemBids[itemID]
	if !ok {
		bids = make(map[string]domain.Bid)
		s.itemBids[itemID] = bids
	}
	bids[caller] = domain.Bid{Bidder: caller, Amount: amount}

	s.log.Info("Bid placed", "item_id", itemID, "bidder", caller, "amount", amount)
	return nil
}

// UpdateListing replaces the name and/or description of an active
// listing. Nil fields are left unchanged. Owner only.
func (s *Store) UpdateListing(caller string, itemID uint64, newName, newDescription *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Owner != caller {
		return domain.ErrNotOwner
	}
	if !item.Active {
		return domain.ErrInactiveAuction
	}

	if newName != nil {
		item.Name = *newName
	}
	if newDescription != nil {
		item.Description = *newDescription
	}

	s.log.Info("Listing updated", "item_id", itemID, "owner", caller)
	return nil
}

// StopListing deactivates a listing and captures the highest bidder
// at that instant as the new owner. The transition happens exactly
// once; a second call fails without touching the captured value.
func (s *Store) StopListing(caller string, itemID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Owner != caller {
		return domain.ErrNotOwner
	}
	if !item.Active {
		return domain.ErrAlreadyStopped
	}

	item.Active = false
	item.NewOwner = item.HighestBidder

	s.log.Info("Listing stopped", "item_id", itemID, "new_owner", item.NewOwner)
	return nil
}

// GetItem returns a copy of the item, or false if it does not exist.
func (s *Store) GetItem(itemID uint64) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.Item{}, false
	}
	return *item, true
}

// ListAllItems returns copies of all items in ascending id order.
func (s *Store) ListAllItems() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Item, 0, len(s.items))
	for _, id := range s.sortedItemIDs() {
		items = append(items, *s.items[id])
	}
	return items
}

func (s *Store) ListedItemsCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(len(s.items))
}

// MostExpensiveSoldItem returns the stopped-with-a-winner item with
// the highest accepted bid. Ties go to the lowest item id.
func (s *Store) MostExpensiveSoldItem() (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *domain.Item
	for _, id := range s.sortedItemIDs() {
		item := s.items[id]
		if item.Active || item.NewOwner == "" {
			continue
		}
		if best == nil || item.CurrentHighestBid > best.CurrentHighestBid {
			best = item
		}
	}
	if best == nil {
		return domain.Item{}, false
	}
	return *best, true
}

// ItemWithMostBids returns the item whose bid ledger has the most
// entries. Ties go to the lowest item id; if no item has any bids
// there is no result.
func (s *Store) ItemWithMostBids() (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *domain.Item
	var maxBids int
	for _, id := range s.sortedItemIDs() {
		count := len(s.itemBids[id])
		if count > maxBids {
			maxBids = count
			best = s.items[id]
		}
	}
	if best == nil {
		return domain.Item{}, false
	}
	return *best, true
}

// BidsForItem returns all live bids recorded for an item, one per
// bidder, in bidder order.
func (s *Store) BidsForItem(itemID uint64) []domain.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.itemBids[itemID]
	if !ok {
		return nil
	}

	bidders := make([]string, 0, len(ledger))
	for bidder := range ledger {
		bidders = append(bidders, bidder)
	}
	sort.Strings(bidders)

	bids := make([]domain.Bid, 0, len(ledger))
	for _, bidder := range bidders {
		bids = append(bids, ledger[bidder])
	}
	return bids
}

// HighestBidForItem returns the ledger entry of the item's current
// highest bidder, or false if the item is unknown or has no bids.
func (s *Store) HighestBidForItem(itemID uint64) (domain.Bid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.HighestBidder == "" {
		return domain.Bid{}, false
	}
	bid, ok := s.itemBids[itemID][item.HighestBidder]
	return bid, ok
}

// sortedItemIDs must be called with s.mu held.
func (s *Store) sortedItemIDs() []uint64 {
	ids := make([]uint64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
