package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/event"
	"github.com/taskfleet/eventd/internal/subscription"
)

// defaultPrefetch bounds unacknowledged deliveries per subscription.
const defaultPrefetch = 8

// Bridge connects the message broker to push-delivery consumers. It
// discovers each consumer's subscriptions, consumes the matching topics,
// pushes events over HTTP, and turns the delivery-status body back into
// an acknowledgment decision.
type Bridge struct {
	source     MessageSource
	endpoints  []string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBridge creates a bridge pushing to the given consumer base URLs.
func NewBridge(source MessageSource, endpoints []string, logger *zap.Logger) *Bridge {
	return &Bridge{
		source:     source,
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Discover fetches a consumer's subscription list.
func (b *Bridge) Discover(ctx context.Context, endpoint string) ([]subscription.Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+subscription.DiscoveryRoute, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build discovery request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to discover subscriptions: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned %d", resp.StatusCode)
	}

	var subs []subscription.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	return subs, nil
}

// Run discovers every consumer and forwards topic deliveries until the
// context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, endpoint := range b.endpoints {
		subs, err := b.Discover(ctx, endpoint)
		if err != nil {
			return fmt.Errorf("discovery failed for %s: %w", endpoint, err)
		}

		b.logger.Info("consumer_discovered",
			zap.String("endpoint", endpoint),
			zap.Int("subscriptions", len(subs)),
		)

		for _, sub := range subs {
			queueName := fmt.Sprintf("%s.%s", sub.Topic, queueSuffix(endpoint, sub.Route))
			msgs, errs, err := b.source.Consume(ctx, sub.Topic, queueName, defaultPrefetch)
			if err != nil {
				return fmt.Errorf("failed to consume topic %s: %w", sub.Topic, err)
			}

			wg.Add(1)
			go func(endpoint string, sub subscription.Subscription, msgs <-chan *Message, errs <-chan error) {
				defer wg.Done()
				b.forward(ctx, endpoint, sub, msgs, errs)
			}(endpoint, sub, msgs, errs)
		}
	}

	wg.Wait()
	return nil
}

// forward pushes each delivery to the subscribed route and acknowledges
// per the returned status.
func (b *Bridge) forward(ctx context.Context, endpoint string, sub subscription.Subscription, msgs <-chan *Message, errs <-chan error) {
	url := endpoint + sub.Route

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if ok && err != nil {
				b.logger.Error("topic_consume_error",
					zap.String("topic", sub.Topic),
					zap.Error(err),
				)
			}
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			b.deliver(ctx, url, sub.Topic, msg)
		}
	}
}

func (b *Bridge) deliver(ctx context.Context, url, topic string, msg *Message) {
	body := EnsureEnvelope(msg.Body, msg.RoutingKey)

	status, err := b.push(ctx, url, body)
	if err != nil {
		b.logger.Warn("push_failed_requeueing",
			zap.String("url", url),
			zap.String("topic", topic),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			b.logger.Error("failed_to_nack", zap.Error(nackErr))
		}
		return
	}

	if status == event.StatusRetry {
		b.logger.Info("consumer_requested_retry",
			zap.String("url", url),
			zap.String("topic", topic),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			b.logger.Error("failed_to_nack", zap.Error(nackErr))
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		b.logger.Error("failed_to_ack", zap.Error(ackErr))
	}
}

// push POSTs one event and reads the delivery status from the body. Any
// transport failure or non-200 answer is an error so the delivery is
// requeued.
func (b *Bridge) push(ctx context.Context, url string, body []byte) (event.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/cloudevents+json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to push event: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("push returned %d", resp.StatusCode)
	}

	var answer struct {
		Status event.Status `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("failed to decode push response: %w", err)
	}
	if answer.Status == "" {
		answer.Status = event.StatusSuccess
	}

	return answer.Status, nil
}

// EnsureEnvelope wraps a raw message body into a CloudEvents envelope
// when it is not one already. The routing key becomes the event type.
func EnsureEnvelope(body []byte, routingKey string) []byte {
	var probe map[string]any
	if err := json.Unmarshal(body, &probe); err == nil {
		if _, hasID := probe["id"]; hasID {
			if _, hasType := probe["type"]; hasType {
				return body
			}
		}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		data = string(body)
	}

	wrapped, err := json.Marshal(map[string]any{
		"specversion": "1.0",
		"id":          uuid.New().String(),
		"type":        routingKey,
		"source":      "pubsub-bridge",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"data":        data,
	})
	if err != nil {
		return body
	}
	return wrapped
}

// queueSuffix derives a stable queue name component from a consumer
// endpoint and route.
func queueSuffix(endpoint, route string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(endpoint + route))
	return fmt.Sprintf("consumer-%08x", h.Sum32())
}
