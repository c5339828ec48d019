package services

import (
	"context"
	"log/slog"

	"github.com/tenderworks/documentsummaryflow/internal/flow"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"github.com/tenderworks/documentsummaryflow/internal/queue"
	"golang.org/x/sync/errgroup"
)

// DispatcherConfig holds configuration for the ingestion dispatcher.
type DispatcherConfig struct {
	ProjectName string
	// MaxConcurrent bounds how many messages of one batch are processed
	// at once. Messages share no mutable state, so anything >= 1 is safe.
	MaxConcurrent int
}

// LoadDispatcherConfig reads dispatcher configuration from the
// environment.
func LoadDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		ProjectName:   gcp.GetEnv("PROJECT_NAME", "document-summary-flow"),
		MaxConcurrent: 4,
	}
}

// DispatcherFunction turns object-creation notifications into flow
// executions. It acknowledges a message if and only if the flow start
// was confirmed, or the message can never succeed.
type DispatcherFunction struct {
	starter flow.Starter
	config  DispatcherConfig
}

func NewDispatcher(starter flow.Starter, config DispatcherConfig) *DispatcherFunction {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &DispatcherFunction{starter: starter, config: config}
}

// messageOutcome classifies one message's processing result.
type messageOutcome int

const (
	outcomeStarted messageOutcome = iota
	outcomeDropped
	outcomeRetry
)

// HandleBatch processes every message of a batch independently. A
// failure on one message never blocks the others; the returned result
// says per receipt handle whether to acknowledge or leave for
// redelivery.
func (d *DispatcherFunction) HandleBatch(ctx context.Context, msgs []queue.Message) queue.BatchResult {
	outcomes := make([]messageOutcome, len(msgs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(d.config.MaxConcurrent)
	for i, msg := range msgs {
		eg.Go(func() error {
			outcomes[i] = d.handleMessage(gctx, msg)
			return nil
		})
	}
	// Workers never return errors; outcomes carry the verdicts.
	_ = eg.Wait()

	var result queue.BatchResult
	for i, msg := range msgs {
		switch outcomes[i] {
		case outcomeStarted:
			result.Started = append(result.Started, msg.ReceiptHandle)
		case outcomeDropped:
			result.Dropped = append(result.Dropped, msg.ReceiptHandle)
		case outcomeRetry:
			result.Retry = append(result.Retry, msg.ReceiptHandle)
		}
	}
	return result
}

func (d *DispatcherFunction) handleMessage(ctx context.Context, msg queue.Message) messageOutcome {
	logCtx := slog.With("receiptHandle", msg.ReceiptHandle)

	ref, err := models.ParseNotification(msg.Body)
	if err != nil {
		// Malformed envelopes can never succeed; redelivering them
		// forever helps nobody. A dead-letter sink can hook in here.
		logCtx.Error("Dropping malformed notification.", "error", err)
		return outcomeDropped
	}
	logCtx = logCtx.With("inputBucket", ref.Bucket, "sourceObjectKey", ref.Key)

	in := models.NewFlowInput(ref, d.config.ProjectName)
	executionID, err := d.starter.Start(ctx, in)
	if err != nil {
		// Transient infrastructure failure: the message stays visible
		// and the queue's redelivery naturally rate-limits retries.
		logCtx.Warn("Flow start failed; leaving message for redelivery.", "error", err)
		return outcomeRetry
	}

	logCtx.Info("Flow execution started.", "executionId", executionID, "destObjectKey", in.DestObjectKey)
	return outcomeStarted
}

var _ queue.Dispatcher = (*DispatcherFunction)(nil)
