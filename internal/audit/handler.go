package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/consumer"
	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/models"
)

// actionByType maps known event types to audit action tags. Unrecognized
// types still get recorded, under the unknown action.
var actionByType = map[string]models.AuditAction{
	event.TypeTaskCreated:       models.ActionTaskCreated,
	event.TypeTaskUpdated:       models.ActionTaskUpdated,
	event.TypeTaskCompleted:     models.ActionTaskCompleted,
	event.TypeTaskDeleted:       models.ActionTaskDeleted,
	event.TypeTaskRecurred:      models.ActionTaskRecurred,
	event.TypeReminderScheduled: models.ActionReminderScheduled,
	event.TypeReminderSent:      models.ActionReminderSent,
	event.TypeReminderCancelled: models.ActionReminderCancelled,
}

// ActionForType returns the audit action tag for an event type.
func ActionForType(eventType string) models.AuditAction {
	if action, ok := actionByType[eventType]; ok {
		return action
	}
	return models.ActionUnknown
}

// Handler records every event it sees as one audit log entry. Audit
// completeness is prioritized over strict validation: an event missing
// user_id is recorded under a placeholder identifier instead of being
// rejected.
type Handler struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an audit reaction handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger, now: time.Now}
}

// Handle implements consumer.Handler.
func (h *Handler) Handle(ctx context.Context, env *event.Envelope) (consumer.Disposition, error) {
	userID := env.String("user_id")
	if userID == "" {
		h.logger.Warn("event_missing_user_id",
			zap.String("event_id", env.ID),
			zap.String("event_type", env.Type),
		)
		userID = models.PlaceholderUserID
	}

	entityID := env.String("task_id")
	if entityID == "" {
		entityID = env.String("reminder_id")
	}
	if entityID == "" {
		entityID = env.ID
	}

	details := make(map[string]any, len(env.Data)+2)
	for k, v := range env.Data {
		details[k] = v
	}
	details["event_id"] = env.ID
	details["event_type"] = env.Type

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return consumer.DispositionHandled, consumer.Malformed(fmt.Errorf("failed to serialize event details: %w", err))
	}

	record := &models.AuditRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     ActionForType(env.Type),
		EntityType: models.EntityType(event.EntityTypeFromEventType(env.Type)),
		EntityID:   entityID,
		Details:    string(detailsJSON),
		CreatedAt:  h.now().UTC(),
	}

	if err := h.store.Write(ctx, record); err != nil {
		return consumer.DispositionHandled, consumer.Transient(fmt.Errorf("failed to write audit record: %w", err))
	}

	h.logger.Info("audit_logged",
		zap.String("event_id", env.ID),
		zap.String("action", string(record.Action)),
		zap.String("entity_type", string(record.EntityType)),
		zap.String("entity_id", record.EntityID),
	)

	return consumer.DispositionHandled, nil
}

var _ consumer.Handler = (*Handler)(nil)
