package ledger

import (
	"errors"
	"reflect"
	"testing"

	"auction-ledger/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore()
	a := s.ListItem("o1", "Vase", "antique")
	b := s.ListItem("o2", "Clock", "broken")
	s.BidForItem("b1", a, 10)
	s.BidForItem("b2", a, 15)
	s.BidForItem("b1", b, 5)
	s.StopListing("o2", b)

	data, err := s.EncodeSnapshot()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	restored := newTestStore()
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if !reflect.DeepEqual(s.ListAllItems(), restored.ListAllItems()) {
		t.Errorf("items differ after round trip:\n%+v\n%+v",
			s.ListAllItems(), restored.ListAllItems())
	}
	for _, id := range []uint64{a, b} {
		if !reflect.DeepEqual(s.BidsForItem(id), restored.BidsForItem(id)) {
			t.Errorf("bid ledger for %d differs after round trip", id)
		}
	}
}

func TestRestoreEmptySnapshotInitializesFreshState(t *testing.T) {
	s := newTestStore()
	s.ListItem("o1", "Vase", "")

	if err := s.RestoreSnapshot(nil); err != nil {
		t.Fatalf("restore nil: %v", err)
	}
	if s.ListedItemsCount() != 0 {
		t.Errorf("count = %d after fresh restore", s.ListedItemsCount())
	}
	if id := s.ListItem("o1", "first", ""); id != 0 {
		t.Errorf("fresh state allocated id %d, want 0", id)
	}
}

func TestRestoreCorruptSnapshotFails(t *testing.T) {
	s := newTestStore()
	err := s.RestoreSnapshot([]byte("definitely not a snapshot"))
	if !errors.Is(err, domain.ErrSnapshotCorrupted) {
		t.Fatalf("expected ErrSnapshotCorrupted, got %v", err)
	}
}

func TestIDCounterSurvivesRoundTrip(t *testing.T) {
	s := newTestStore()
	seen := make(map[uint64]bool)
	for i := 0; i < 3; i++ {
		seen[s.ListItem("o1", "item", "")] = true
	}

	data, err := s.EncodeSnapshot()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored := newTestStore()
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	id := restored.ListItem("o1", "after restart", "")
	if seen[id] {
		t.Fatalf("id %d reused after restore", id)
	}
	if id != 3 {
		t.Errorf("expected id 3 after restore, got %d", id)
	}
}

func TestRoundTripOfEmptyAggregate(t *testing.T) {
	s := newTestStore()
	data, err := s.EncodeSnapshot()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	restored := newTestStore()
	restored.ListItem("o1", "stale", "")
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ListedItemsCount() != 0 {
		t.Errorf("restored empty aggregate has %d items", restored.ListedItemsCount())
	}
}
