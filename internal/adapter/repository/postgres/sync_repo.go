package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// SyncRepository queues outgoing mutations in the sync_events table.
type SyncRepository struct {
	pool *pgxpool.Pool
}

// NewSyncRepository creates a new SyncRepository.
func NewSyncRepository(pool *pgxpool.Pool) *SyncRepository {
	return &SyncRepository{pool: pool}
}

// Create inserts a sync event.
func (r *SyncRepository) Create(ctx context.Context, event *domain.SyncEvent) error {
	return r.create(ctx, r.pool, event)
}

// CreateTx inserts a sync event within a database transaction, so the event
// commits or rolls back together with the mutation it describes.
func (r *SyncRepository) CreateTx(ctx context.Context, tx usecase.Transaction, event *domain.SyncEvent) error {
	return r.create(ctx, pgxFrom(tx), event)
}

func (r *SyncRepository) create(ctx context.Context, db dbtx, event *domain.SyncEvent) error {
	query := `
		INSERT INTO sync_events (
			id, aggregate_id, aggregate_type, event_type, payload,
			entity_updated_at, created_at, synced_at, synced
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		event.EntityUpdatedAt,
		event.CreatedAt,
		event.SyncedAt,
		event.Synced,
	)

	return err
}

// GetUnsynced retrieves up to limit pending events in creation order.
func (r *SyncRepository) GetUnsynced(ctx context.Context, limit int) ([]*domain.SyncEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload,
		       entity_updated_at, created_at, synced_at, synced
		FROM sync_events
		WHERE NOT synced
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SyncEvent
	for rows.Next() {
		var (
			e       domain.SyncEvent
			payload []byte
		)
		err := rows.Scan(
			&e.ID,
			&e.AggregateID,
			&e.AggregateType,
			&e.EventType,
			&payload,
			&e.EntityUpdatedAt,
			&e.CreatedAt,
			&e.SyncedAt,
			&e.Synced,
		)
		if err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, &e)
	}

	return out, rows.Err()
}

// MarkSynced flags an event as delivered.
func (r *SyncRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	query := `UPDATE sync_events SET synced = TRUE, synced_at = $2 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, syncedAt)
	return err
}

// DeleteSynced purges delivered events older than the cutoff.
func (r *SyncRepository) DeleteSynced(ctx context.Context, before time.Time) error {
	query := `DELETE FROM sync_events WHERE synced AND synced_at < $1`

	_, err := r.pool.Exec(ctx, query, before)
	return err
}
