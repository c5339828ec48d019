package flow

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// FirestoreRecorder persists flow execution status records, keyed by
// execution ID.
type FirestoreRecorder struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRecorder(client *firestore.Client, collection string) *FirestoreRecorder {
	if collection == "" {
		collection = "flowExecutions"
	}
	return &FirestoreRecorder{client: client, collection: collection}
}

func (r *FirestoreRecorder) Begin(ctx context.Context, exec *models.FlowExecution) error {
	exec.CreatedAt = time.Now()
	_, err := r.client.Collection(r.collection).Doc(exec.ExecutionID).Set(ctx, exec)
	if err != nil {
		return fmt.Errorf("failed to create execution record: %w", err)
	}
	return nil
}

func (r *FirestoreRecorder) Finish(ctx context.Context, executionID, status string, stageErr *models.StageError) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
		{Path: "finishedAt", Value: time.Now()},
	}
	if stageErr != nil {
		updates = append(updates,
			firestore.Update{Path: "errorCode", Value: stageErr.Code},
			firestore.Update{Path: "errorDetails", Value: stageErr.Error()},
		)
	}
	_, err := r.client.Collection(r.collection).Doc(executionID).Update(ctx, updates)
	if err != nil {
		return fmt.Errorf("failed to update execution record: %w", err)
	}
	return nil
}

// NoopRecorder discards execution records. Used where no Firestore
// project is configured.
type NoopRecorder struct{}

func (NoopRecorder) Begin(context.Context, *models.FlowExecution) error { return nil }

func (NoopRecorder) Finish(context.Context, string, string, *models.StageError) error { return nil }
