package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/jackc/pgx/v5"
)

// BillingEventRepository stores payment-provider webhook deliveries. The
// provider's event id is the primary key, so a redelivered event is recorded
// once.
type BillingEventRepository struct {
	server *server.Server
}

func NewBillingEventRepository(s *server.Server) *BillingEventRepository {
	return &BillingEventRepository{server: s}
}

// Record inserts the event and reports whether it was new.
func (r *BillingEventRepository) Record(ctx context.Context, event *billing.Event) (bool, error) {
	stmt := `
		INSERT INTO
			billing_events (
				id,
				type,
				livemode,
				payload
			)
		VALUES
			(
				@id,
				@type,
				@livemode,
				@payload
			)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{
		"id":       event.ID,
		"type":     event.Type,
		"livemode": event.Livemode,
		"payload":  []byte(event.Payload),
	})
	if err != nil {
		return false, fmt.Errorf("failed to execute record billing event query for event_id=%s: %w", event.ID, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *BillingEventRepository) Get(ctx context.Context, id string) (*billing.Event, error) {
	stmt := `
		SELECT
			id,
			type,
			livemode,
			payload,
			received_at,
			processed_at
		FROM
			billing_events
		WHERE
			id = @id
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get billing event query for event_id=%s: %w", id, err)
	}

	event, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[billing.Event])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:billing_events for event_id=%s: %w", id, err)
	}

	return &event, nil
}

// MarkProcessed stamps processed_at. It reports false when the event was
// already processed, so a retried job can skip its side effects.
func (r *BillingEventRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	stmt := `
		UPDATE billing_events
		SET
			processed_at = NOW()
		WHERE
			id = @id
			AND processed_at IS NULL
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to execute mark billing event processed query for event_id=%s: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}
