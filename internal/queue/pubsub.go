package queue

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
)

// Dispatcher is the consumer-side contract: given a batch of messages,
// report per-message outcomes.
type Dispatcher interface {
	HandleBatch(ctx context.Context, msgs []Message) BatchResult
}

// Consumer pulls notifications from a Pub/Sub subscription and feeds
// them to the dispatcher. The subscription's ack deadline is the
// visibility window; a nacked or unacknowledged message is redelivered
// once it elapses.
type Consumer struct {
	sub        *pubsub.Subscription
	dispatcher Dispatcher
}

// NewConsumer wires a pull consumer to a subscription. maxOutstanding
// bounds how many messages may be in flight at once; distinct messages
// share no mutable state, so concurrent processing is safe.
func NewConsumer(client *pubsub.Client, subscriptionID string, maxOutstanding int, dispatcher Dispatcher) (*Consumer, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscriptionID must not be empty")
	}
	sub := client.Subscription(subscriptionID)
	if maxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	}
	return &Consumer{sub: sub, dispatcher: dispatcher}, nil
}

// Run blocks receiving messages until ctx is cancelled. Each delivery is
// handed to the dispatcher as a batch of one; the dispatcher's verdict
// decides between ack (flow started, or permanently malformed) and nack
// (transient failure, redeliver after the visibility window).
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("Queue consumer starting.", "subscription", c.sub.ID())
	err := c.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		msg := Message{Body: m.Data, ReceiptHandle: m.ID}
		result := c.dispatcher.HandleBatch(ctx, []Message{msg})

		for _, handle := range result.Ackable() {
			if handle == msg.ReceiptHandle {
				m.Ack()
				return
			}
		}
		m.Nack()
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("subscription receive failed: %w", err)
	}
	slog.Info("Queue consumer stopped.")
	return nil
}
