package projects

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles projects/tasks PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new projects Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithTasks persists a project and its tasks in one transaction, so a
// partially written project can never be observed.
func (r *Repository) CreateWithTasks(ctx context.Context, project *Project, tasks []Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO projects (id, owner_user_id, title, description, status, priority, start_date, end_date, ai_generated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, project.OwnerUserID, project.Title, project.Description,
		project.Status, project.Priority, project.StartDate, project.EndDate, project.AIGenerated)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	for _, t := range tasks {
		_, err = tx.Exec(ctx,
			`INSERT INTO tasks (id, project_id, title, description, status, priority, start_date, end_date, completed, order_index, parent_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
			t.StartDate, t.EndDate, t.Completed, t.OrderIndex, t.ParentID)
		if err != nil {
			return fmt.Errorf("inserting task %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing project: %w", err)
	}
	return nil
}
