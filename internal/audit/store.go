package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskfleet/eventd/internal/database"
	"github.com/taskfleet/eventd/internal/models"
)

// QueryFilter narrows an audit log query. Zero values mean no filter.
type QueryFilter struct {
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	Limit      int
}

// DefaultQueryLimit caps unbounded audit queries.
const DefaultQueryLimit = 100

// Store persists audit records.
type Store interface {
	Write(ctx context.Context, record *models.AuditRecord) error
	Query(ctx context.Context, filter QueryFilter) ([]*models.AuditRecord, error)
}

// PostgresStore persists audit records in the audit_logs table.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed audit store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Write implements Store.
func (s *PostgresStore) Write(ctx context.Context, record *models.AuditRecord) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var details sql.NullString
	if record.Details != "" {
		details = sql.NullString{String: record.Details, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		string(record.Action),
		string(record.EntityType),
		record.EntityID,
		details,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	return nil
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, filter QueryFilter) ([]*models.AuditRecord, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs
		WHERE 1=1
	`
	var args []any
	argIndex := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", argIndex)
		args = append(args, filter.EntityType)
		argIndex++
	}
	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", argIndex)
		args = append(args, filter.EntityID)
		argIndex++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIndex)
		args = append(args, filter.Action)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var records []*models.AuditRecord
	for rows.Next() {
		record := &models.AuditRecord{}
		var details sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Action,
			&record.EntityType,
			&record.EntityID,
			&details,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if details.Valid {
			record.Details = details.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit rows: %w", err)
	}

	return records, nil
}

var _ Store = (*PostgresStore)(nil)
