package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"auction-ledger/internal/domain"
)

// snapshotState is the wire form of the whole aggregate. The encoding
// is internal: it only has to round-trip exactly within one version.
type snapshotState struct {
	Items      map[uint64]domain.Item
	ItemBids   map[uint64]map[string]domain.Bid
	NextItemID uint64
}

// EncodeSnapshot serializes the entire aggregate to an opaque blob.
// It holds the store lock for the duration, so no mutation can
// interleave with the save.
func (s *Store) EncodeSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := snapshotState{
		Items:      make(map[uint64]domain.Item, len(s.items)),
		ItemBids:   make(map[uint64]map[string]domain.Bid, len(s.itemBids)),
		NextItemID: s.nextItemID,
	}
	for id, item := range s.items {
		state.Items[id] = *item
	}
	for id, ledger := range s.itemBids {
		bids := make(map[string]domain.Bid, len(ledger))
		for bidder, bid := range ledger {
			bids[bidder] = bid
		}
		state.ItemBids[id] = bids
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&state); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreSnapshot replaces the aggregate with the decoded snapshot.
// An empty or absent blob means first run: the store is reset to
// fresh empty state. Anything else that fails to decode is reported
// as ErrSnapshotCorrupted and must abort startup.
func (s *Store) RestoreSnapshot(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		s.items = make(map[uint64]*domain.Item)
		s.itemBids = make(map[uint64]map[string]domain.Bid)
		s.nextItemID = 0
		s.log.Info("No snapshot found, initializing fresh state")
		return nil
	}

	var state snapshotState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSnapshotCorrupted, err)
	}

	items := make(map[uint64]*domain.Item, len(state.Items))
	for id := range state.Items {
		item := state.Items[id]
		items[id] = &item
	}
	itemBids := state.ItemBids
	if itemBids == nil {
		itemBids = make(map[uint64]map[string]domain.Bid)
	}

	s.items = items
	s.itemBids = itemBids
	s.nextItemID = state.NextItemID

	s.log.Info("State restored from snapshot",
		"items", len(s.items), "next_item_id", s.nextItemID)
	return nil
}
