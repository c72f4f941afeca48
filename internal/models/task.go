package models

import (
	"time"

	"github.com/google/uuid"
)

// RecurrenceType describes how often a task repeats.
type RecurrenceType string

const (
	RecurrenceNone   RecurrenceType = "none"
	RecurrenceDaily  RecurrenceType = "daily"
	RecurrenceWeekly RecurrenceType = "weekly"
	RecurrenceCustom RecurrenceType = "custom"
)

// ParseRecurrenceType maps a payload string to a recurrence type.
// Unrecognized values degrade to RecurrenceNone.
func ParseRecurrenceType(s string) RecurrenceType {
	switch RecurrenceType(s) {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceCustom:
		return RecurrenceType(s)
	default:
		return RecurrenceNone
	}
}

// Priority represents task priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task represents a task record. Generated next occurrences are handed to
// the task store in this shape; the consumers never mutate a task after
// creation.
type Task struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             string         `json:"user_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	IsCompleted        bool           `json:"is_completed"`
	RecurrenceType     RecurrenceType `json:"recurrence_type"`
	RecurrenceInterval int            `json:"recurrence_interval,omitempty"`
	DueAt              *time.Time     `json:"due_at,omitempty"`
	NextOccurrenceAt   *time.Time     `json:"next_occurrence_at,omitempty"`
	Priority           Priority       `json:"priority"`
	ParentTaskID       string         `json:"parent_task_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
