package subscription

import (
	"encoding/json"
	"net/http"

	"github.com/taskfleet/eventd/internal/event"
)

// DiscoveryRoute is where the broker sidecar discovers a consumer's
// topic subscriptions.
const DiscoveryRoute = "/dapr/subscribe"

// Subscription declares one topic a service listens on and the route the
// broker pushes its events to. Metadata always carries the raw-payload
// flag so the broker delivers the message body unwrapped.
type Subscription struct {
	PubSubName string            `json:"pubsubname"`
	Topic      string            `json:"topic"`
	Route      string            `json:"route"`
	Metadata   map[string]string `json:"metadata"`
}

func newSubscription(pubsub, topic, route string) Subscription {
	return Subscription{
		PubSubName: pubsub,
		Topic:      topic,
		Route:      route,
		Metadata:   map[string]string{"rawPayload": "true"},
	}
}

// ForAudit returns the audit service's subscriptions: every task and
// reminder event.
func ForAudit(pubsub string) []Subscription {
	return []Subscription{
		newSubscription(pubsub, event.TopicTaskEvents, event.RouteTaskEvents),
		newSubscription(pubsub, event.TopicReminders, event.RouteReminders),
	}
}

// ForNotification returns the notification service's subscription.
func ForNotification(pubsub string) []Subscription {
	return []Subscription{
		newSubscription(pubsub, event.TopicReminders, event.RouteReminders),
	}
}

// ForRecurring returns the recurring-task service's subscription.
func ForRecurring(pubsub string) []Subscription {
	return []Subscription{
		newSubscription(pubsub, event.TopicTaskEvents, event.RouteTaskEvents),
	}
}

// Handler serves the subscription list for the broker's discovery call.
func Handler(subs []Subscription) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(subs); err != nil {
			http.Error(w, "Failed to encode subscriptions", http.StatusInternalServerError)
		}
	}
}
