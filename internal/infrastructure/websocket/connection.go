package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WatcherConn wraps one gorilla connection watching one item. Writes
// are serialized with a mutex because gorilla allows only a single
// concurrent writer.
type WatcherConn struct {
	conn    *websocket.Conn
	id      string
	itemID  uint64
	writeMu sync.Mutex
}

func NewWatcherConn(conn *websocket.Conn, id string, itemID uint64) *WatcherConn {
	return &WatcherConn{
		conn:   conn,
		id:     id,
		itemID: itemID,
	}
}

func (c *WatcherConn) Send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *WatcherConn) Close() error {
	return c.conn.Close()
}

func (c *WatcherConn) ID() string {
	return c.id
}

func (c *WatcherConn) ItemID() uint64 {
	return c.itemID
}

// NextReaderDiscard blocks until the peer sends something or the
// connection drops. Watchers are read-only, so inbound payloads are
// thrown away; the read loop only exists to detect disconnects.
func (c *WatcherConn) NextReaderDiscard() error {
	_, _, err := c.conn.ReadMessage()
	return err
}
