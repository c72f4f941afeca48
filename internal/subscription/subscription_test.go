package subscription

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServiceSubscriptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		subs   []Subscription
		topics []string
		routes []string
	}{
		{
			name:   "audit subscribes to both topics",
			subs:   ForAudit("taskpubsub"),
			topics: []string{"task-events", "reminders"},
			routes: []string{"/events/task", "/events/reminder"},
		},
		{
			name:   "notification subscribes to reminders",
			subs:   ForNotification("taskpubsub"),
			topics: []string{"reminders"},
			routes: []string{"/events/reminder"},
		},
		{
			name:   "recurring subscribes to task events",
			subs:   ForRecurring("taskpubsub"),
			topics: []string{"task-events"},
			routes: []string{"/events/task"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if len(tt.subs) != len(tt.topics) {
				t.Fatalf("Expected %d subscriptions, got %d", len(tt.topics), len(tt.subs))
			}
			for i, sub := range tt.subs {
				if sub.PubSubName != "taskpubsub" {
					t.Errorf("Expected pubsub name taskpubsub, got %s", sub.PubSubName)
				}
				if sub.Topic != tt.topics[i] {
					t.Errorf("Expected topic %s, got %s", tt.topics[i], sub.Topic)
				}
				if sub.Route != tt.routes[i] {
					t.Errorf("Expected route %s, got %s", tt.routes[i], sub.Route)
				}
				if sub.Metadata["rawPayload"] != "true" {
					t.Errorf("Expected rawPayload metadata flag, got %v", sub.Metadata)
				}
			}
		})
	}
}

func TestHandler_ServesSubscriptionList(t *testing.T) {
	t.Parallel()

	handler := Handler(ForAudit("taskpubsub"))
	req := httptest.NewRequest(http.MethodGet, DiscoveryRoute, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rec.Code)
	}

	var subs []Subscription
	if err := json.NewDecoder(rec.Body).Decode(&subs); err != nil {
		t.Fatalf("Failed to decode subscription list: %v", err)
	}
	if len(subs) != 2 {
		t.Errorf("Expected 2 subscriptions, got %d", len(subs))
	}
	if subs[0].Route != "/events/task" {
		t.Errorf("Expected first route /events/task, got %s", subs[0].Route)
	}
}
