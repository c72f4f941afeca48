package recurring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/consumer"
	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/models"
	"github.com/taskfleet/eventd/internal/recurrence"
)

// Handler reacts to task.completed events by generating and persisting
// the next occurrence of recurring tasks.
type Handler struct {
	generator *recurrence.Generator
	store     TaskStore
	logger    *zap.Logger
}

// NewHandler creates a recurring-task handler.
func NewHandler(generator *recurrence.Generator, store TaskStore, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// Handle implements consumer.Handler. Only task.completed is acted on;
// every other event type on the topic is ignored.
func (h *Handler) Handle(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	if env.Type != event.TypeTaskCompleted {
		return consumer.DispositionIgnored, nil
	}

	taskID := env.String("task_id")
	userID := env.String("user_id")
	if taskID == "" || userID == "" {
		return consumer.DispositionHandled, consumer.Validation(
			fmt.Errorf("completed task event missing task_id or user_id"))
	}

	recurrenceType := models.ParseRecurrenceType(env.String("recurrence_type"))
	if recurrenceType == models.RecurrenceNone {
		h.logger.Debug("task_not_recurring",
			zap.String("task_id", taskID),
		)
		return consumer.DispositionNoRecurrence, nil
	}

	next := h.generator.Generate(recurrence.Descriptor{
		ParentTaskID:       taskID,
		UserID:             userID,
		Title:              env.StringOr("title", "Task"),
		Description:        env.String("description"),
		RecurrenceType:     recurrenceType,
		RecurrenceInterval: env.Int("recurrence_interval"),
		DueAt:              env.String("due_at"),
		Priority:           models.Priority(env.String("priority")),
	})
	if next == nil {
		return consumer.DispositionNoRecurrence, nil
	}

	if err := h.store.CreateTask(ctx, next); err != nil {
		return consumer.DispositionHandled, consumer.Transient(
			fmt.Errorf("failed to persist next occurrence: %w", err))
	}

	h.logger.Info("next_occurrence_created",
		zap.String("parent_task_id", taskID),
		zap.String("task_id", next.ID.String()),
		zap.String("user_id", userID),
	)
	return consumer.DispositionHandled, nil
}

var _ consumer.Handler = (*Handler)(nil)
