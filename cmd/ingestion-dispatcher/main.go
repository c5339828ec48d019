package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/tenderworks/documentsummaryflow/internal/flow"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/queue"
	"github.com/tenderworks/documentsummaryflow/internal/services"
)

var (
	dispatcherInstance *services.DispatcherFunction
	once               sync.Once
	initErr            error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes queue push
	// deliveries here.
	functions.CloudEvent("DispatchNotification", dispatchNotification)
}

// main is required by the Go Functions Framework.
func main() {}

// pubsubEvent is the queue push delivery wrapper around one message.
type pubsubEvent struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// dispatchNotification is the Cloud Function entry point. Returning nil
// acknowledges the delivery; returning an error leaves the message for
// redelivery after the visibility window.
func dispatchNotification(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		dispatcherInstance, initErr = newDispatcher(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var event pubsubEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	msg := queue.Message{Body: event.Message.Data, ReceiptHandle: event.Message.MessageID}
	result := dispatcherInstance.HandleBatch(ctx, []queue.Message{msg})
	if len(result.Retry) > 0 {
		return fmt.Errorf("flow start failed for message %s; leaving for redelivery", msg.ReceiptHandle)
	}
	return nil
}

func newDispatcher(ctx context.Context) (*services.DispatcherFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	starter, err := flow.NewWorkflowsStarter(ctx,
		projectID,
		gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		gcp.GetEnv("WORKFLOW_ID", "document-summary-orchestrator"),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("Ingestion dispatcher initialized.")
	return services.NewDispatcher(starter, services.LoadDispatcherConfig()), nil
}
