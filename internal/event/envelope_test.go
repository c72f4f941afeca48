package event

import (
	"testing"
	"time"
)

func TestParseEnvelope_Conformant(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"specversion": "1.0",
		"id": "evt-123",
		"type": "task.completed",
		"source": "backend",
		"time": "2024-01-01T10:00:00Z",
		"datacontenttype": "application/json",
		"data": {"task_id": "t-1", "user_id": "u-1", "recurrence_interval": 3}
	}`)

	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}

	if env.ID != "evt-123" {
		t.Errorf("Expected id evt-123, got %s", env.ID)
	}
	if env.Type != "task.completed" {
		t.Errorf("Expected type task.completed, got %s", env.Type)
	}
	if env.Source != "backend" {
		t.Errorf("Expected source backend, got %s", env.Source)
	}
	if env.Time == nil || !env.Time.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected time: %v", env.Time)
	}
	if env.String("task_id") != "t-1" {
		t.Errorf("Expected payload task_id t-1, got %s", env.String("task_id"))
	}
	if env.Int("recurrence_interval") != 3 {
		t.Errorf("Expected recurrence_interval 3, got %d", env.Int("recurrence_interval"))
	}
	if !env.HasID() {
		t.Error("Expected HasID to be true")
	}
}

func TestParseEnvelope_LooseKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantID   string
		wantType string
		wantKey  string
	}{
		{
			name:     "missing id and type default to unknown",
			body:     `{"task_id": "t-9", "user_id": "u-9"}`,
			wantID:   "unknown",
			wantType: "unknown",
			wantKey:  "task_id",
		},
		{
			name:     "loose top-level id and type",
			body:     `{"id": "evt-7", "type": "reminder.sent", "reminder_id": "r-7"}`,
			wantID:   "evt-7",
			wantType: "reminder.sent",
			wantKey:  "reminder_id",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, err := ParseEnvelope([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseEnvelope returned error: %v", err)
			}
			if env.ID != tt.wantID {
				t.Errorf("Expected id %s, got %s", tt.wantID, env.ID)
			}
			if env.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, env.Type)
			}
			if env.String(tt.wantKey) == "" {
				t.Errorf("Expected payload key %s to survive loose parsing", tt.wantKey)
			}
		})
	}
}

func TestParseEnvelope_InvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := ParseEnvelope([]byte("not json")); err == nil {
		t.Fatal("Expected error for invalid JSON body")
	}
}

func TestParseEnvelope_BadTimeIsTolerated(t *testing.T) {
	t.Parallel()

	env, err := ParseEnvelope([]byte(`{"id": "e", "type": "task.created", "time": "yesterday", "data": {}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	if env.Time != nil {
		t.Errorf("Expected unparseable time to degrade to nil, got %v", env.Time)
	}
}

func TestEnvelope_HasID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{"evt-1", true},
		{"", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		env := &Envelope{ID: tt.id}
		if got := env.HasID(); got != tt.want {
			t.Errorf("HasID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestEntityTypeFromEventType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eventType string
		want      string
	}{
		{"task.created", "task"},
		{"task.completed", "task"},
		{"reminder.sent", "reminder"},
		{"billing.charged", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := EntityTypeFromEventType(tt.eventType); got != tt.want {
			t.Errorf("EntityTypeFromEventType(%q) = %s, want %s", tt.eventType, got, tt.want)
		}
	}
}
