package services

import (
	"context"
	"time"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/ledger"
	"auction-ledger/pkg/logger"
	"auction-ledger/pkg/utils"
)

// LedgerService is the operation surface consumed by the dispatch
// layer. Every mutation goes through the store first; only after the
// store has committed does the service emit the corresponding event
// to the publisher and audit trail. Emission failures are logged,
// never surfaced: the mutation already happened.
type LedgerService struct {
	store     *ledger.Store
	eventPub  domain.EventPublisher
	auditRepo domain.LedgerEventRepository
	log       logger.Logger
}

func NewLedgerService(
	store *ledger.Store,
	eventPub domain.EventPublisher,
	auditRepo domain.LedgerEventRepository,
	log logger.Logger,
) *LedgerService {
	return &LedgerService{
		store:     store,
		eventPub:  eventPub,
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *LedgerService) ListItem(ctx context.Context, caller, name, description string) uint64 {
	itemID := s.store.ListItem(caller, name, description)
	s.emit(ctx, domain.ItemListed, itemID, caller, 0)
	return itemID
}

func (s *LedgerService) BidForItem(ctx context.Context, caller string, itemID, amount uint64) error {
	if err := s.store.BidForItem(caller, itemID, amount); err != nil {
		return err
	}
	s.emit(ctx, domain.BidPlaced, itemID, caller, amount)
	return nil
}

func (s *LedgerService) UpdateListing(ctx context.Context, caller string, itemID uint64, newName, newDescription *string) error {
	if err := s.store.UpdateListing(caller, itemID, newName, newDescription); err != nil {
		return err
	}
	s.emit(ctx, domain.ListingUpdated, itemID, caller, 0)
	return nil
}

func (s *LedgerService) StopListing(ctx context.Context, caller string, itemID uint64) error {
	if err := s.store.StopListing(caller, itemID); err != nil {
		return err
	}
	s.emit(ctx, domain.ListingStopped, itemID, caller, 0)
	return nil
}

func (s *LedgerService) GetItem(itemID uint64) (domain.Item, bool) {
	return s.store.GetItem(itemID)
}

func (s *LedgerService) ListAllItems() []domain.Item {
	return s.store.ListAllItems()
}

func (s *LedgerService) ListedItemsCount() uint64 {
	return s.store.ListedItemsCount()
}

func (s *LedgerService) MostExpensiveSoldItem() (domain.Item, bool) {
	return s.store.MostExpensiveSoldItem()
}

func (s *LedgerService) ItemWithMostBids() (domain.Item, bool) {
	return s.store.ItemWithMostBids()
}

func (s *LedgerService) BidsForItem(itemID uint64) []domain.Bid {
	return s.store.BidsForItem(itemID)
}

func (s *LedgerService) HighestBidForItem(itemID uint64) (domain.Bid, bool) {
	return s.store.HighestBidForItem(itemID)
}

// GetItemHistory reads the audit trail. Only available when the
// service was wired with an audit repository.
func (s *LedgerService) GetItemHistory(ctx context.Context, itemID uint64) ([]*domain.LedgerEvent, error) {
	if s.auditRepo == nil {
		return nil, nil
	}
	return s.auditRepo.GetItemHistory(ctx, itemID)
}

func (s *LedgerService) HistoryEnabled() bool {
	return s.auditRepo != nil
}

func (s *LedgerService) emit(ctx context.Context, eventType domain.LedgerEventType, itemID uint64, actor string, amount uint64) {
	event := &domain.LedgerEvent{
		ID:        utils.GenerateID("event"),
		Type:      eventType,
		ItemID:    itemID,
		Actor:     actor,
		Amount:    amount,
		Timestamp: time.Now(),
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLedgerEvent(ctx, event); err != nil {
			s.log.Error("Failed to publish ledger event",
				"event_id", event.ID, "type", eventType, "error", err)
		}
	}

	if s.auditRepo != nil {
		if err := s.auditRepo.SaveLedgerEvent(ctx, event); err != nil {
			s.log.Error("Failed to persist ledger event",
				"event_id", event.ID, "type", eventType, "error", err)
		}
	}
}
