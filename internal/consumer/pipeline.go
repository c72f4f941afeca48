package consumer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/idempotency"
)

// Disposition is a handler's verdict on an event it accepted.
type Disposition int

const (
	// DispositionHandled means the side effect ran successfully.
	DispositionHandled Disposition = iota
	// DispositionNoRecurrence means the handler ran and determined no
	// occurrence was due. The event still counts as processed.
	DispositionNoRecurrence
	// DispositionIgnored means the event type is out of scope for this
	// service; no side effect ran and the event is not cached.
	DispositionIgnored
)

// Handler reacts to one parsed event. Implementations return a
// Disposition on success; failures carry an ErrorKind tag (see Error)
// that drives the delivery-status translation.
type Handler interface {
	Handle(ctx context.Context, env *event.Envelope) (Disposition, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *event.Envelope) (Disposition, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, env *event.Envelope) (Disposition, error) {
	return f(ctx, env)
}

// Pipeline runs the shared consumption protocol for one inbound push:
// parse, atomic dedup check-and-reserve, dispatch, commit or release,
// translate the outcome to a delivery status.
type Pipeline struct {
	store   idempotency.Store
	handler Handler
	logger  *zap.Logger
}

// NewPipeline creates a pipeline around a dedup store and a handler.
func NewPipeline(store idempotency.Store, handler Handler, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, handler: handler, logger: logger}
}

// Process consumes one raw pushed message and returns the delivery
// status the broker should act on. It never panics and never returns
// internal error detail; failures are logged here.
func (p *Pipeline) Process(ctx context.Context, body []byte) event.Status {
	env, err := event.ParseEnvelope(body)
	if err != nil {
		p.logger.Error("failed_to_parse_event", zap.Error(err))
		return event.StatusDrop
	}

	log := p.logger.With(
		zap.String("event_id", env.ID),
		zap.String("event_type", env.Type),
	)
	log.Info("received_event")

	// The parser defaults an absent id to "unknown"; such events carry no
	// usable dedup key and are never cached.
	dedupID := ""
	if env.HasID() {
		dedupID = env.ID
	}

	reserved, err := p.store.CheckAndReserve(ctx, dedupID)
	if err != nil {
		// The idempotency guarantee is lost for this event but the
		// request must not fail: treat as not yet processed.
		log.Error("idempotency_store_unavailable_failing_open", zap.Error(err))
		reserved = true
	}
	if !reserved {
		log.Info("event_already_processed_skipping")
		return event.StatusSuccess
	}

	disp, err := p.dispatch(ctx, env)
	if err != nil {
		if relErr := p.store.Release(ctx, dedupID); relErr != nil {
			log.Warn("failed_to_release_reservation", zap.Error(relErr))
		}
		return p.failureStatus(log, err)
	}

	switch disp {
	case DispositionIgnored:
		// Out-of-scope events are not cached; a later redelivery is
		// ignored again just as cheaply.
		if relErr := p.store.Release(ctx, dedupID); relErr != nil {
			log.Warn("failed_to_release_reservation", zap.Error(relErr))
		}
		log.Debug("event_type_out_of_scope")
		return event.StatusIgnored
	case DispositionNoRecurrence:
		p.commit(ctx, log, dedupID)
		log.Info("no_recurrence_needed")
		return event.StatusNoRecurrence
	default:
		p.commit(ctx, log, dedupID)
		log.Info("event_processed")
		return event.StatusSuccess
	}
}

// dispatch invokes the handler, converting a panic into a permanent
// failure so it surfaces as DROP rather than a broken response.
func (p *Pipeline) dispatch(ctx context.Context, env *event.Envelope) (disp Disposition, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("handler_panic_recovered",
				zap.Any("panic", r),
				zap.String("event_id", env.ID),
				zap.String("event_type", env.Type),
			)
			disp = DispositionHandled
			err = Permanent(fmt.Errorf("handler panicked: %v", r))
		}
	}()
	return p.handler.Handle(ctx, env)
}

func (p *Pipeline) commit(ctx context.Context, log *zap.Logger, id string) {
	if err := p.store.Commit(ctx, id); err != nil {
		// The side effect already ran; losing the marker only risks a
		// redundant redelivery within the TTL window.
		log.Warn("failed_to_commit_idempotency_marker", zap.Error(err))
	}
}

// failureStatus applies the status-mapping policy to a failure's kind:
// transient and validation failures ask for redelivery, everything else
// is dropped and logged for investigation.
func (p *Pipeline) failureStatus(log *zap.Logger, err error) event.Status {
	kind := KindOf(err)
	switch kind {
	case KindTransient, KindValidation:
		log.Warn("event_handling_failed_requesting_retry",
			zap.String("error_kind", kind.String()),
			zap.Error(err),
		)
		return event.StatusRetry
	default:
		log.Error("event_handling_failed_dropping",
			zap.String("error_kind", kind.String()),
			zap.Error(err),
		)
		return event.StatusDrop
	}
}
