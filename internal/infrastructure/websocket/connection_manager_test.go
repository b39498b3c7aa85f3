package websocket

import (
	"encoding/json"
	"errors"
	"testing"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

type fakeWatcher struct {
	id      string
	itemID  uint64
	sent    [][]byte
	sendErr error
	closed  bool
}

func (f *fakeWatcher) Send(message []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeWatcher) Close() error {
	f.closed = true
	return nil
}

func (f *fakeWatcher) ID() string     { return f.id }
func (f *fakeWatcher) ItemID() uint64 { return f.itemID }

func TestBroadcastReachesOnlyItemWatchers(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())

	w1 := &fakeWatcher{id: "w1", itemID: 0}
	w2 := &fakeWatcher{id: "w2", itemID: 0}
	other := &fakeWatcher{id: "w3", itemID: 1}
	for _, w := range []*fakeWatcher{w1, w2, other} {
		if err := cm.RegisterWatcher(w); err != nil {
			t.Fatal(err)
		}
	}

	event := &domain.LedgerEvent{Type: domain.BidPlaced, ItemID: 0, Actor: "b1", Amount: 10}
	if err := cm.BroadcastToItem(0, event); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if len(w1.sent) != 1 || len(w2.sent) != 1 {
		t.Errorf("watchers got %d/%d messages, want 1/1", len(w1.sent), len(w2.sent))
	}
	if len(other.sent) != 0 {
		t.Errorf("watcher on another item got %d messages", len(other.sent))
	}

	var decoded domain.LedgerEvent
	if err := json.Unmarshal(w1.sent[0], &decoded); err != nil {
		t.Fatalf("decode broadcast payload: %v", err)
	}
	if decoded.Type != domain.BidPlaced || decoded.Amount != 10 {
		t.Errorf("payload = %+v", decoded)
	}
}

func TestBroadcastContinuesPastFailedConnection(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())

	broken := &fakeWatcher{id: "broken", itemID: 0, sendErr: errors.New("gone")}
	healthy := &fakeWatcher{id: "healthy", itemID: 0}
	cm.RegisterWatcher(broken)
	cm.RegisterWatcher(healthy)

	if err := cm.BroadcastToItem(0, map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(healthy.sent) != 1 {
		t.Errorf("healthy watcher got %d messages, want 1", len(healthy.sent))
	}
}

func TestUnregisterWatcher(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	w := &fakeWatcher{id: "w1", itemID: 0}
	cm.RegisterWatcher(w)

	if err := cm.UnregisterWatcher(w); err != nil {
		t.Fatal(err)
	}
	if conns := cm.WatchersForItem(0); len(conns) != 0 {
		t.Errorf("watchers after unregister = %d", len(conns))
	}

	if err := cm.BroadcastToItem(0, "x"); err != nil {
		t.Errorf("broadcast to empty item: %v", err)
	}
}
