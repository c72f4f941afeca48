package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/consumer"
	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/models"
	"github.com/taskfleet/eventd/internal/upstream"
	"github.com/taskfleet/eventd/internal/validation"
)

// dueReminderPayload is the payload shape of a reminder.due event.
type dueReminderPayload struct {
	ReminderID string `validate:"required"`
	TaskID     string `validate:"required"`
	UserID     string `validate:"required"`
}

// Handler reacts to reminder and task events by delivering notifications.
type Handler struct {
	api      upstream.TaskAPI
	sender   Sender
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a notification handler.
func NewHandler(api upstream.TaskAPI, sender Sender, logger *zap.Logger) *Handler {
	return &Handler{
		api:      api,
		sender:   sender,
		validate: validation.New(),
		logger:   logger,
	}
}

// Handle implements consumer.Handler.
func (h *Handler) Handle(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	switch {
	case env.Type == event.TypeReminderDue:
		return h.handleDueReminder(ctx, env)
	case strings.HasPrefix(env.Type, "task."):
		return h.handleTaskEvent(ctx, env)
	default:
		return h.handleReminderEvent(ctx, env)
	}
}

// handleDueReminder notifies the user that a reminder fired and records
// the delivery outcome upstream. The reminder id is extracted up front so
// a failure at any later step can still be reported against it.
func (h *Handler) handleDueReminder(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	payload := dueReminderPayload{
		ReminderID: env.String("reminder_id"),
		TaskID:     env.String("task_id"),
		UserID:     env.String("user_id"),
	}
	if err := h.validate.Struct(payload); err != nil {
		return consumer.DispositionHandled, consumer.Validation(
			fmt.Errorf("due reminder payload incomplete: %w", err))
	}

	title, err := h.api.GetTask(ctx, payload.TaskID, payload.UserID)
	if err != nil {
		h.logger.Warn("task_title_fetch_failed",
			zap.String("task_id", payload.TaskID),
			zap.Error(err),
		)
	}
	if title == "" {
		title = "Task"
	}

	sendErr := h.sender.Send(ctx, Request{
		Channel: models.ChannelInApp,
		UserID:  payload.UserID,
		Subject: "Reminder",
		Message: fmt.Sprintf("Reminder: %s is due soon!", title),
		Metadata: map[string]string{
			"reminder_id": payload.ReminderID,
			"task_id":     payload.TaskID,
		},
	})

	status := upstream.ReminderStatusSent
	if sendErr != nil {
		status = upstream.ReminderStatusFailed
	}
	if patchErr := h.api.PatchReminderStatus(ctx, payload.ReminderID, status); patchErr != nil {
		// Delivery already happened (or failed); the status update is
		// best effort and must not change the event outcome.
		h.logger.Warn("reminder_status_update_failed",
			zap.String("reminder_id", payload.ReminderID),
			zap.String("status", status),
			zap.Error(patchErr),
		)
	}

	if sendErr != nil {
		return consumer.DispositionHandled, consumer.Transient(
			fmt.Errorf("failed to send due reminder notification: %w", sendErr))
	}

	h.logger.Info("due_reminder_notified",
		zap.String("reminder_id", payload.ReminderID),
		zap.String("user_id", payload.UserID),
	)
	return consumer.DispositionHandled, nil
}

// handleReminderEvent covers reminder lifecycle events other than
// reminder.due.
func (h *Handler) handleReminderEvent(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	payload := dueReminderPayload{
		ReminderID: env.String("reminder_id"),
		TaskID:     env.String("task_id"),
		UserID:     env.String("user_id"),
	}
	if err := h.validate.Struct(payload); err != nil {
		return consumer.DispositionHandled, consumer.Validation(
			fmt.Errorf("reminder payload incomplete: %w", err))
	}

	message := fmt.Sprintf("Reminder: %s", env.StringOr("task_title", "Task"))
	if remindAt := env.String("remind_at"); remindAt != "" {
		message += fmt.Sprintf(" (scheduled for %s)", remindAt)
	}

	if err := h.sender.Send(ctx, Request{
		Channel: models.ChannelInApp,
		UserID:  payload.UserID,
		Subject: "Reminder",
		Message: message,
		Metadata: map[string]string{
			"reminder_id": payload.ReminderID,
			"task_id":     payload.TaskID,
		},
	}); err != nil {
		return consumer.DispositionHandled, consumer.Transient(
			fmt.Errorf("failed to send reminder notification: %w", err))
	}

	h.logger.Info("reminder_notified",
		zap.String("reminder_id", payload.ReminderID),
		zap.String("event_type", env.Type),
	)
	return consumer.DispositionHandled, nil
}

// handleTaskEvent notifies on high-priority task activity only.
func (h *Handler) handleTaskEvent(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	if env.String("priority") != string(models.PriorityHigh) {
		return consumer.DispositionHandled, nil
	}

	title := env.StringOr("title", "Task")

	var subject, message string
	switch env.Type {
	case event.TypeTaskCompleted:
		subject = "Task Completed"
		message = fmt.Sprintf("You completed: %s", title)
	case event.TypeTaskCreated:
		subject = "New High-Priority Task"
		message = fmt.Sprintf("New task created: %s", title)
	default:
		return consumer.DispositionHandled, nil
	}

	userID := env.String("user_id")
	if userID == "" {
		return consumer.DispositionHandled, consumer.Validation(
			fmt.Errorf("task event %s missing user_id", env.Type))
	}

	if err := h.sender.Send(ctx, Request{
		Channel: models.ChannelInApp,
		UserID:  userID,
		Subject: subject,
		Message: message,
		Metadata: map[string]string{
			"task_id": env.String("task_id"),
		},
	}); err != nil {
		return consumer.DispositionHandled, consumer.Transient(
			fmt.Errorf("failed to send task notification: %w", err))
	}

	h.logger.Info("task_notified",
		zap.String("event_type", env.Type),
		zap.String("user_id", userID),
	)
	return consumer.DispositionHandled, nil
}

var _ consumer.Handler = (*Handler)(nil)
