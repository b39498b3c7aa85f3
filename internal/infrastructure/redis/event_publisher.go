package redis

import (
	"context"
	"encoding/json"

	"auction-ledger/internal/domain"

	"github.com/go-redis/redis/v8"
)

const ledgerEventsChannel = "ledger_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishLedgerEvent(ctx context.Context, event *domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, ledgerEventsChannel, payload).Err()
}
