package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Envelope is a normalized broker-delivered event. Conformant messages
// follow the CloudEvents 1.0 shape; anything else degrades to loose
// top-level keys so a malformed envelope still produces a response that
// controls broker redelivery.
type Envelope struct {
	SpecVersion     string         `json:"specversion,omitempty"`
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Source          string         `json:"source,omitempty"`
	Time            *time.Time     `json:"time,omitempty"`
	DataContentType string         `json:"datacontenttype,omitempty"`
	Data            map[string]any `json:"data"`
}

// wire mirrors the envelope with lenient field types so a single odd
// field never sinks the whole decode.
type wire struct {
	SpecVersion     string         `json:"specversion"`
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Source          string         `json:"source"`
	Time            string         `json:"time"`
	DataContentType string         `json:"datacontenttype"`
	Data            map[string]any `json:"data"`
}

// ParseEnvelope decodes a raw inbound message into an Envelope. The only
// fatal condition is a body that is not a JSON object; absent fields
// degrade to defaults. When the object carries no "data" key the whole
// object becomes the payload.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var w wire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("invalid event body: %w", err)
	}

	env := &Envelope{
		SpecVersion:     w.SpecVersion,
		ID:              w.ID,
		Type:            w.Type,
		Source:          w.Source,
		DataContentType: w.DataContentType,
		Data:            w.Data,
	}

	if env.ID == "" {
		env.ID = TypeUnknown
	}
	if env.Type == "" {
		env.Type = TypeUnknown
	}

	if w.Time != "" {
		if ts, err := time.Parse(time.RFC3339, w.Time); err == nil {
			utc := ts.UTC()
			env.Time = &utc
		}
	}

	if env.Data == nil {
		// Not a conformant envelope: treat the top-level object as the
		// payload itself.
		var loose map[string]any
		if err := json.Unmarshal(body, &loose); err == nil {
			delete(loose, "id")
			delete(loose, "type")
			env.Data = loose
		}
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}

	return env, nil
}

// HasID reports whether the envelope carries a usable deduplication key.
// An absent or defaulted id disables dedup for the event.
func (e *Envelope) HasID() bool {
	return e.ID != "" && e.ID != TypeUnknown
}

// String returns the payload value under key as a string, or "" when the
// key is absent or not a string.
func (e *Envelope) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// StringOr returns the payload string under key, or fallback when absent.
func (e *Envelope) StringOr(key, fallback string) string {
	if v := e.String(key); v != "" {
		return v
	}
	return fallback
}

// Int returns the payload value under key as an int, tolerating the JSON
// number forms encoding/json produces.
func (e *Envelope) Int(key string) int {
	switch v := e.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

// EntityTypeFromEventType derives the entity class from an event type
// prefix: "task." maps to task, "reminder." to reminder.
func EntityTypeFromEventType(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "task."):
		return "task"
	case strings.HasPrefix(eventType, "reminder."):
		return "reminder"
	default:
		return TypeUnknown
	}
}
