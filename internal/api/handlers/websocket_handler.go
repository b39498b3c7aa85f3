package handlers

import (
	"net/http"

	"auction-ledger/internal/domain"
	ws "auction-ledger/internal/infrastructure/websocket"
	"auction-ledger/internal/services"
	"auction-ledger/pkg/logger"
	"auction-ledger/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// WebSocketHandler upgrades spectators onto the per-item event feed.
// Watchers are read-only; ledger events reach them through the
// connection manager.
type WebSocketHandler struct {
	service     *services.LedgerService
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewWebSocketHandler(service *services.LedgerService,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		service:     service,
		connManager: connManager,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	if _, ok := h.service.GetItem(itemID); !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrItemNotFound.Error()})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return nil
	}

	watcher := ws.NewWatcherConn(conn, utils.GenerateID("watcher"), itemID)

	if err := h.connManager.RegisterWatcher(watcher); err != nil {
		h.log.Error("Failed to register watcher", "error", err)
		conn.Close()
		return nil
	}

	go h.readPump(watcher)
	return nil
}

func (h *WebSocketHandler) readPump(watcher *ws.WatcherConn) {
	defer func() {
		h.connManager.UnregisterWatcher(watcher)
		watcher.Close()
	}()

	for {
		if err := watcher.NextReaderDiscard(); err != nil {
			return
		}
	}
}
