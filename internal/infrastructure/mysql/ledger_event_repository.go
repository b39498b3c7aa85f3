package mysql

import (
	"context"
	"database/sql"
	"time"

	"auction-ledger/internal/domain"
)

// MySQLLedgerEventRepository is an append-only audit trail of
// accepted mutations. It is a side channel: the ledger itself
// persists through snapshots, never through these rows.
type MySQLLedgerEventRepository struct {
	db *sql.DB
}

func NewMySQLLedgerEventRepository(db *sql.DB) *MySQLLedgerEventRepository {
	return &MySQLLedgerEventRepository{db: db}
}

func (r *MySQLLedgerEventRepository) SaveLedgerEvent(ctx context.Context, event *domain.LedgerEvent) error {
	query := `
        INSERT INTO ledger_events (id, item_id, actor, amount, event_type, timestamp, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.ItemID, event.Actor, event.Amount,
		string(event.Type), event.Timestamp, time.Now())
	return err
}

func (r *MySQLLedgerEventRepository) GetItemHistory(ctx context.Context, itemID uint64) ([]*domain.LedgerEvent, error) {
	query := `
        SELECT id, item_id, actor, amount, event_type, timestamp
        FROM ledger_events
        WHERE item_id = ?
        ORDER BY timestamp ASC
    `

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.LedgerEvent
	for rows.Next() {
		var event domain.LedgerEvent
		var eventType string

		err := rows.Scan(&event.ID, &event.ItemID, &event.Actor,
			&event.Amount, &eventType, &event.Timestamp)
		if err != nil {
			return nil, err
		}

		event.Type = domain.LedgerEventType(eventType)
		events = append(events, &event)
	}

	return events, rows.Err()
}
