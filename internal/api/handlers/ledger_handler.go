package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/services"
	"auction-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
)

const callerContextKey = "caller"

// CallerIdentity extracts the verified caller identity supplied by
// the front proxy in the X-Caller-ID header. Requests without one
// never reach a handler.
func CallerIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller := c.Request().Header.Get("X-Caller-ID")
		if caller == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "X-Caller-ID header required"})
		}
		c.Set(callerContextKey, caller)
		return next(c)
	}
}

type LedgerHandler struct {
	service *services.LedgerService
	log     logger.Logger
}

func NewLedgerHandler(service *services.LedgerService, log logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		log:     log,
	}
}

type ListItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ListItemResponse struct {
	ItemID uint64 `json:"item_id"`
}

type BidRequest struct {
	Amount uint64 `json:"amount"`
}

type UpdateListingRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

func (h *LedgerHandler) ListItem(c echo.Context) error {
	caller := c.Get(callerContextKey).(string)

	var req ListItemRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	itemID := h.service.ListItem(c.Request().Context(), caller, req.Name, req.Description)
	return c.JSON(http.StatusCreated, ListItemResponse{ItemID: itemID})
}

func (h *LedgerHandler) BidForItem(c echo.Context) error {
	caller := c.Get(callerContextKey).(string)

	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	var req BidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := h.service.BidForItem(c.Request().Context(), caller, itemID, req.Amount); err != nil {
		return h.ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Bid placed successfully"})
}

func (h *LedgerHandler) UpdateListing(c echo.Context) error {
	caller := c.Get(callerContextKey).(string)

	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := h.service.UpdateListing(c.Request().Context(), caller, itemID, req.Name, req.Description); err != nil {
		return h.ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Listing updated successfully"})
}

func (h *LedgerHandler) StopListing(c echo.Context) error {
	caller := c.Get(callerContextKey).(string)

	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	if err := h.service.StopListing(c.Request().Context(), caller, itemID); err != nil {
		return h.ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Listing stopped successfully"})
}

func (h *LedgerHandler) GetItem(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	item, ok := h.service.GetItem(itemID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrItemNotFound.Error()})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) ListAllItems(c echo.Context) error {
	items := h.service.ListAllItems()
	return c.JSON(http.StatusOK, items)
}

func (h *LedgerHandler) GetListedItemsCount(c echo.Context) error {
	return c.JSON(http.StatusOK, CountResponse{Count: h.service.ListedItemsCount()})
}

func (h *LedgerHandler) GetMostExpensiveSoldItem(c echo.Context) error {
	item, ok := h.service.MostExpensiveSoldItem()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no sold items"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) GetItemWithMostBids(c echo.Context) error {
	item, ok := h.service.ItemWithMostBids()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no bids placed yet"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) GetBidsForItem(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	bids := h.service.BidsForItem(itemID)
	if bids == nil {
		bids = []domain.Bid{}
	}
	return c.JSON(http.StatusOK, bids)
}

func (h *LedgerHandler) GetHighestBidForItem(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	bid, ok := h.service.HighestBidForItem(itemID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no bids for item"})
	}
	return c.JSON(http.StatusOK, bid)
}

func (h *LedgerHandler) GetItemHistory(c echo.Context) error {
	itemID, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	events, err := h.service.GetItemHistory(c.Request().Context(), itemID)
	if err != nil {
		h.log.Error("Failed to load item history", "item_id", itemID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load history"})
	}
	if events == nil {
		events = []*domain.LedgerEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

func (h *LedgerHandler) ledgerError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrSelfBid):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInactiveAuction), errors.Is(err, domain.ErrAlreadyStopped):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrBidTooLow):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func itemIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
