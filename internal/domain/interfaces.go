package domain

import (
	"context"
)

// Snapshot storage interface. Read returns (nil, nil) when no
// snapshot has ever been written.
type SnapshotStore interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
}

// Event interfaces
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *LedgerEvent) error
}

type EventSubscriber interface {
	SubscribeToLedgerEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *LedgerEvent) error

// Audit interface
type LedgerEventRepository interface {
	SaveLedgerEvent(ctx context.Context, event *LedgerEvent) error
	GetItemHistory(ctx context.Context, itemID uint64) ([]*LedgerEvent, error)
}

// WebSocket interfaces
type WatcherConnection interface {
	Send(message []byte) error
	Close() error
	ID() string
	ItemID() uint64
}

type ConnectionManager interface {
	RegisterWatcher(conn WatcherConnection) error
	UnregisterWatcher(conn WatcherConnection) error
	WatchersForItem(itemID uint64) []WatcherConnection
	BroadcastToItem(itemID uint64, message interface{}) error
}
