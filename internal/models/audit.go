package models

import "time"

// AuditAction tags an audit record with the event that produced it.
type AuditAction string

const (
	ActionTaskCreated       AuditAction = "task.created"
	ActionTaskUpdated       AuditAction = "task.updated"
	ActionTaskCompleted     AuditAction = "task.completed"
	ActionTaskDeleted       AuditAction = "task.deleted"
	ActionTaskRecurred      AuditAction = "task.recurred"
	ActionReminderScheduled AuditAction = "reminder.scheduled"
	ActionReminderSent      AuditAction = "reminder.sent"
	ActionReminderCancelled AuditAction = "reminder.cancelled"
	ActionUnknown           AuditAction = "unknown"
)

// EntityType identifies the kind of entity an audit record refers to.
type EntityType string

const (
	EntityTask     EntityType = "task"
	EntityReminder EntityType = "reminder"
	EntityUnknown  EntityType = "unknown"
)

// PlaceholderUserID is substituted when an event payload carries no
// user_id. Audit completeness wins over strict validation.
const PlaceholderUserID = "00000000-0000-0000-0000-000000000000"

// AuditRecord is one persisted audit log entry.
type AuditRecord struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Action     AuditAction `json:"action"`
	EntityType EntityType  `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Details    string      `json:"details,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
