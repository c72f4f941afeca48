package event

// Status is the delivery-status code returned to the broker in the
// response body. The body, not the HTTP status, is the redelivery signal:
// push endpoints answer HTTP 200 for every code so no transport-level
// retry is layered on top of the explicit one.
type Status string

const (
	// StatusSuccess marks the event delivered: handled successfully or
	// recognized as an already-processed duplicate.
	StatusSuccess Status = "SUCCESS"
	// StatusRetry asks the broker to redeliver later.
	StatusRetry Status = "RETRY"
	// StatusDrop tells the broker to never redeliver; the failure is
	// logged for operator investigation.
	StatusDrop Status = "DROP"
	// StatusIgnored means the event type is out of scope for this service.
	StatusIgnored Status = "IGNORED"
	// StatusNoRecurrence means the handler ran and determined no
	// occurrence was due; the event is still marked processed.
	StatusNoRecurrence Status = "NO_RECURRENCE"
)
