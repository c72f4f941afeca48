package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one topic delivery awaiting acknowledgment.
type Message struct {
	Body       []byte
	RoutingKey string

	ack  func() error
	nack func(requeue bool) error
}

// newMessage builds a Message with explicit acknowledgment hooks.
func newMessage(body []byte, routingKey string, ack func() error, nack func(requeue bool) error) *Message {
	return &Message{Body: body, RoutingKey: routingKey, ack: ack, nack: nack}
}

// Ack acknowledges the delivery.
func (m *Message) Ack() error {
	return m.ack()
}

// Nack rejects the delivery, optionally requeueing it.
func (m *Message) Nack(requeue bool) error {
	return m.nack(requeue)
}

// MessageSource delivers messages from a pub/sub topic.
type MessageSource interface {
	Consume(ctx context.Context, topic, queueName string, prefetchCount int) (<-chan *Message, <-chan error, error)
	Close() error
}

// TopicConsumer consumes topic exchanges over AMQP.
type TopicConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewTopicConsumer creates a topic consumer connected to RabbitMQ.
func NewTopicConsumer(amqpURL string) (*TopicConsumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			// Log but don't return the close error
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &TopicConsumer{conn: conn, channel: ch}, nil
}

// setupTopic declares the topic exchange and a durable queue bound to
// every routing key on it.
func (c *TopicConsumer) setupTopic(topic, queueName string) error {
	err := c.channel.ExchangeDeclare(
		topic,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		queueName,
		"#", // every routing key on the topic
		topic,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

// Consume implements MessageSource. Each call uses a dedicated AMQP
// channel so per-subscription prefetch limits stay independent.
func (c *TopicConsumer) Consume(ctx context.Context, topic, queueName string, prefetchCount int) (<-chan *Message, <-chan error, error) {
	if err := c.setupTopic(topic, queueName); err != nil {
		return nil, nil, err
	}

	consumeCh, err := c.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		if closeErr := consumeCh.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		queueName,
		"",    // consumer tag (empty = auto-generate)
		false, // auto-ack (false = manual ack required)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		if closeErr := consumeCh.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() {
			if err := consumeCh.Close(); err != nil {
				// Channel may already be closed
				_ = err
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				msg := newMessage(
					delivery.Body,
					delivery.RoutingKey,
					func() error { return delivery.Ack(false) },
					func(requeue bool) error { return delivery.Nack(false, requeue) },
				)

				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// Close closes the broker connection.
func (c *TopicConsumer) Close() error {
	var err error
	if c.channel != nil {
		err = c.channel.Close()
	}
	if c.conn != nil {
		if closeErr := c.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

var _ MessageSource = (*TopicConsumer)(nil)
