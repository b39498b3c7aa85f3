package websocket

import (
	"encoding/json"
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

// ConnectionManager tracks spectator connections per item id and
// fans ledger events out to them.
type ConnectionManager struct {
	watchers map[uint64]map[string]domain.WatcherConnection // itemID -> connID -> connection
	mutex    sync.RWMutex
	log      logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		watchers: make(map[uint64]map[string]domain.WatcherConnection),
		log:      log,
	}
}

func (cm *ConnectionManager) RegisterWatcher(conn domain.WatcherConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	itemID := conn.ItemID()
	if cm.watchers[itemID] == nil {
		cm.watchers[itemID] = make(map[string]domain.WatcherConnection)
	}
	cm.watchers[itemID][conn.ID()] = conn

	cm.log.Info("Watcher registered", "conn_id", conn.ID(), "item_id", itemID)
	return nil
}

func (cm *ConnectionManager) UnregisterWatcher(conn domain.WatcherConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	itemID := conn.ItemID()
	if itemConns, exists := cm.watchers[itemID]; exists {
		delete(itemConns, conn.ID())
		if len(itemConns) == 0 {
			delete(cm.watchers, itemID)
		}
	}

	cm.log.Info("Watcher unregistered", "conn_id", conn.ID(), "item_id", itemID)
	return nil
}

func (cm *ConnectionManager) WatchersForItem(itemID uint64) []domain.WatcherConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.WatcherConnection
	for _, conn := range cm.watchers[itemID] {
		connections = append(connections, conn)
	}
	return connections
}

func (cm *ConnectionManager) BroadcastToItem(itemID uint64, message interface{}) error {
	connections := cm.WatchersForItem(itemID)
	if len(connections) == 0 {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	for _, conn := range connections {
		if err := conn.Send(messageBytes); err != nil {
			cm.log.Error("Failed to send message", "conn_id", conn.ID(),
				"item_id", itemID, "error", err)
			// Continue to other connections
		}
	}

	return nil
}
