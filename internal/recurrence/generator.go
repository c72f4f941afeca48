package recurrence

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/models"
)

// DefaultMaxFutureDays caps how far ahead a custom interval may schedule
// the next occurrence.
const DefaultMaxFutureDays = 365

// Descriptor carries the fields of a completed task needed to generate
// its next occurrence.
type Descriptor struct {
	ParentTaskID       string
	UserID             string
	Title              string
	Description        string
	RecurrenceType     models.RecurrenceType
	RecurrenceInterval int
	DueAt              string
	Priority           models.Priority
}

// Generator produces next-occurrence task records with policy validation
// in front of the date computation.
type Generator struct {
	maxFutureDays int
	now           func() time.Time
	logger        *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxFutureDays overrides the scheduling horizon for custom intervals.
func WithMaxFutureDays(days int) GeneratorOption {
	return func(g *Generator) { g.maxFutureDays = days }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a next-occurrence generator.
func NewGenerator(logger *zap.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		maxFutureDays: DefaultMaxFutureDays,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanGenerate reports whether the recurrence settings permit generating a
// next occurrence. The check runs before generation, which assumes valid
// inputs.
func (g *Generator) CanGenerate(typ models.RecurrenceType, interval int) bool {
	if typ == models.RecurrenceNone {
		return false
	}
	if typ == models.RecurrenceCustom {
		if interval <= 0 {
			return false
		}
		if interval > g.maxFutureDays {
			return false
		}
	}
	return true
}

// Generate validates the descriptor and produces the next occurrence.
// Returns nil when the settings do not permit one.
func (g *Generator) Generate(d Descriptor) *models.Task {
	if !g.CanGenerate(d.RecurrenceType, d.RecurrenceInterval) {
		g.logger.Warn("cannot_generate_occurrence_invalid_settings",
			zap.String("recurrence_type", string(d.RecurrenceType)),
			zap.Int("recurrence_interval", d.RecurrenceInterval),
		)
		return nil
	}
	return g.NextOccurrence(d)
}

// NextOccurrence computes the due date and builds the new task record
// without policy validation. Most callers want Generate.
func (g *Generator) NextOccurrence(d Descriptor) *models.Task {
	now := g.now().UTC()

	nextDue, err := CalculateNextDueDate(d.DueAt, d.RecurrenceType, d.RecurrenceInterval, now)
	if err != nil {
		g.logger.Error("failed_to_calculate_next_due_date",
			zap.String("parent_task_id", d.ParentTaskID),
			zap.Error(err),
		)
		return nil
	}
	if nextDue == nil {
		if d.RecurrenceType == models.RecurrenceCustom {
			g.logger.Warn("custom_recurrence_without_valid_interval",
				zap.String("parent_task_id", d.ParentTaskID),
			)
		}
		return nil
	}

	priority := d.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		ID:                 uuid.New(),
		UserID:             d.UserID,
		Title:              d.Title,
		Description:        d.Description,
		IsCompleted:        false,
		RecurrenceType:     d.RecurrenceType,
		RecurrenceInterval: d.RecurrenceInterval,
		DueAt:              nextDue,
		NextOccurrenceAt:   nextDue,
		Priority:           priority,
		ParentTaskID:       d.ParentTaskID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	g.logger.Info("generated_next_occurrence",
		zap.String("parent_task_id", d.ParentTaskID),
		zap.String("new_task_id", task.ID.String()),
		zap.Time("next_due_at", *nextDue),
	)

	return task
}
