package recurring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskfleet/eventd/internal/database"
	"github.com/taskfleet/eventd/internal/models"
)

// TaskStore persists generated next occurrences.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
}

// PostgresStore writes generated tasks to the tasks table.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed task store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateTask implements TaskStore.
func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, is_completed,
			recurrence_type, recurrence_interval, due_at, next_occurrence_at,
			priority, parent_task_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var dueAt, nextAt sql.NullTime
	if task.DueAt != nil {
		dueAt = sql.NullTime{Time: *task.DueAt, Valid: true}
	}
	if task.NextOccurrenceAt != nil {
		nextAt = sql.NullTime{Time: *task.NextOccurrenceAt, Valid: true}
	}

	var parentID sql.NullString
	if task.ParentTaskID != "" {
		parentID = sql.NullString{String: task.ParentTaskID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.IsCompleted,
		string(task.RecurrenceType),
		task.RecurrenceInterval,
		dueAt,
		nextAt,
		string(task.Priority),
		parentID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

var _ TaskStore = (*PostgresStore)(nil)
