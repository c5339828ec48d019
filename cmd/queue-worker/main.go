// queue-worker is the self-contained deployment of the pipeline: it
// pulls notifications from the queue subscription and runs flow
// executions in-process instead of handing them to Cloud Workflows.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/tenderworks/documentsummaryflow/internal/flow"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"github.com/tenderworks/documentsummaryflow/internal/queue"
	"github.com/tenderworks/documentsummaryflow/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("Queue worker exited with error.", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	subscriptionID := gcp.GetEnv("QUEUE_SUBSCRIPTION", "")
	if subscriptionID == "" {
		return fmt.Errorf("QUEUE_SUBSCRIPTION environment variable must be set")
	}
	resultBucket := gcp.GetEnv("RESULT_BUCKET", "")
	if resultBucket == "" {
		return fmt.Errorf("RESULT_BUCKET environment variable must be set")
	}

	extractor, err := services.NewExtractor(ctx)
	if err != nil {
		return err
	}
	summarizer, err := services.NewSummarizer(ctx)
	if err != nil {
		return err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	resultStore, err := services.NewResultStore(storageClient, resultBucket)
	if err != nil {
		return err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()
	recorder := flow.NewFirestoreRecorder(firestoreClient, gcp.GetEnv("FIRESTORE_COLLECTION", "flowExecutions"))

	runner := flow.NewRunner(extractor, summarizer, resultStore, recorder, gcp.GetEnv("SUMMARY_MODE", models.ModeDefault))
	starter := flow.NewLocalStarter(runner, flowTimeout())
	dispatcher := services.NewDispatcher(starter, services.LoadDispatcherConfig())

	pubsubClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to create pubsub client: %w", err)
	}
	defer pubsubClient.Close()

	consumer, err := queue.NewConsumer(pubsubClient, subscriptionID, maxOutstanding(), dispatcher)
	if err != nil {
		return err
	}

	slog.Info("Queue worker initialized.", "subscription", subscriptionID, "resultBucket", resultBucket)
	return consumer.Run(ctx)
}

func flowTimeout() time.Duration {
	if raw := gcp.GetEnv("FLOW_TIMEOUT_SECONDS", ""); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 5 * time.Minute
}

func maxOutstanding() int {
	if raw := gcp.GetEnv("MAX_OUTSTANDING_MESSAGES", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 8
}
