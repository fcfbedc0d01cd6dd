package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the authoritative, append-only generation event log.
type Store interface {
	InsertEvent(ctx context.Context, ev *GenerationEvent) error
	ListEventsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]GenerationEvent, error)
}

// Repository handles generation_events PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new usage Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertEvent appends a single generation event.
func (r *Repository) InsertEvent(ctx context.Context, ev *GenerationEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO generation_events (id, user_id, project_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		ev.ID, ev.UserID, ev.ProjectID, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting generation event: %w", err)
	}
	return nil
}

// ListEventsSince returns the user's events with created_at >= since,
// oldest first.
func (r *Repository) ListEventsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]GenerationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, project_id, created_at
		 FROM generation_events
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying generation events: %w", err)
	}
	defer rows.Close()

	var events []GenerationEvent
	for rows.Next() {
		var ev GenerationEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ProjectID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning generation event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
