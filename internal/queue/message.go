// Package queue models the at-least-once work queue feeding the
// ingestion dispatcher and hosts the Pub/Sub pull consumer.
package queue

// Message is one delivered queue message. The receipt handle is the
// opaque token needed to acknowledge (delete) the message; the queue's
// visibility window bounds how long the message stays claimed before
// redelivery.
type Message struct {
	Body          []byte
	ReceiptHandle string
}

// BatchResult partitions one batch's receipt handles by outcome. A
// failure on one message never blocks acknowledgment of unrelated
// succeeded messages in the same batch.
type BatchResult struct {
	// Started: a flow execution was durably started; acknowledge.
	Started []string
	// Dropped: permanently malformed; acknowledge so the queue stops
	// redelivering what can never succeed.
	Dropped []string
	// Retry: transient flow-start failure; leave unacknowledged so the
	// message reappears after the visibility window elapses.
	Retry []string
}

// Ackable returns every receipt handle that must be acknowledged:
// confirmed flow starts plus permanent drops.
func (r BatchResult) Ackable() []string {
	acked := make([]string, 0, len(r.Started)+len(r.Dropped))
	acked = append(acked, r.Started...)
	acked = append(acked, r.Dropped...)
	return acked
}
