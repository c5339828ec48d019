package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/google/uuid"
	"github.com/tenderworks/documentsummaryflow/internal/flow"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"github.com/tenderworks/documentsummaryflow/internal/services"
)

var (
	runnerInstance *flow.Runner
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleRunFlow", handleRunFlow)
}

// main is required by the Go Functions Framework.
func main() {}

// handleRunFlow executes one full flow for the posted input and reports
// its terminal state. This is the single endpoint a workflow definition
// needs to call per document.
func handleRunFlow(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		runnerInstance, initErr = newRunner(context.Background())
	})
	if initErr != nil {
		slog.Error("Flow runner initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.FlowRunnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.Input.SourceObjectKey == "" || req.Input.InputBucket == "" {
		http.Error(w, "Bad Request: source_object_key and input_bucket are required", http.StatusBadRequest)
		return
	}
	if req.Input.DestObjectKey == "" {
		req.Input.DestObjectKey = models.DeriveDestObjectKey(req.Input.SourceObjectKey)
	}

	result := runnerInstance.Run(r.Context(), uuid.NewString(), req.Input)

	resp := models.FlowRunnerResponse{
		ExecutionID: result.ExecutionID,
		Status:      string(result.State),
	}
	statusCode := http.StatusOK
	if result.Err != nil {
		resp.Error = result.Err.Error()
		statusCode = result.Err.Code
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func newRunner(ctx context.Context) (*flow.Runner, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	resultBucket := gcp.GetEnv("RESULT_BUCKET", "")
	if resultBucket == "" {
		return nil, fmt.Errorf("RESULT_BUCKET environment variable must be set")
	}

	extractor, err := services.NewExtractor(ctx)
	if err != nil {
		return nil, err
	}
	summarizer, err := services.NewSummarizer(ctx)
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	resultStore, err := services.NewResultStore(storageClient, resultBucket)
	if err != nil {
		return nil, err
	}

	var recorder flow.Recorder = flow.NoopRecorder{}
	if gcp.GetEnv("FIRESTORE_DISABLED", "") == "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
		if err != nil {
			return nil, err
		}
		recorder = flow.NewFirestoreRecorder(firestoreClient, gcp.GetEnv("FIRESTORE_COLLECTION", "flowExecutions"))
	}

	slog.Info("Flow runner initialized.", "resultBucket", resultBucket)
	return flow.NewRunner(extractor, summarizer, resultStore, recorder, gcp.GetEnv("SUMMARY_MODE", models.ModeDefault)), nil
}
