// Package flow implements the document-processing orchestration flow: a
// two-stage pipeline sequencing text extraction, enrichment, and result
// persistence for a single document reference.
package flow

import (
	"context"
	"log/slog"

	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// Flow states. Failed is absorbing and reachable from Extracting or
// Enriching; Completed and Failed are terminal. There is no resumable
// checkpoint between stages: a retried document replays from Started.
type State string

const (
	StateStarted    State = "Started"
	StateExtracting State = "Extracting"
	StateEnriching  State = "Enriching"
	StateCompleted  State = "Completed"
	StateFailed     State = "Failed"
)

// Extractor produces plain text for a stored document.
type Extractor interface {
	Extract(ctx context.Context, bucket, key string) (string, error)
}

// Enricher turns extracted text into the terminal artifact.
type Enricher interface {
	Enrich(ctx context.Context, text, mode string) (*models.EnrichmentResult, error)
}

// Persister writes the terminal artifact to the result store.
type Persister interface {
	Persist(ctx context.Context, destObjectKey string, result *models.EnrichmentResult) error
}

// Recorder tracks execution status for operators. Recording failures are
// logged but never fail the flow itself.
type Recorder interface {
	Begin(ctx context.Context, exec *models.FlowExecution) error
	Finish(ctx context.Context, executionID, status string, stageErr *models.StageError) error
}

// Result is the terminal outcome of one flow execution.
type Result struct {
	ExecutionID string
	State       State
	Err         *models.StageError
}

// Runner executes the flow in-process. It is stateless across
// executions; all dependencies are injected once at construction.
type Runner struct {
	extractor Extractor
	enricher  Enricher
	persister Persister
	recorder  Recorder
	mode      string
}

// NewRunner builds a flow runner. mode selects the enrichment prompt
// template for every execution of this flow configuration.
func NewRunner(extractor Extractor, enricher Enricher, persister Persister, recorder Recorder, mode string) *Runner {
	if mode == "" {
		mode = models.ModeDefault
	}
	return &Runner{
		extractor: extractor,
		enricher:  enricher,
		persister: persister,
		recorder:  recorder,
		mode:      mode,
	}
}

// Run drives one execution through Started → Extracting → Enriching →
// Completed, or into the absorbing Failed state. No retries happen
// inside the flow; retry policy belongs to the caller starting a fresh
// execution.
func (r *Runner) Run(ctx context.Context, executionID string, in models.FlowInput) Result {
	logCtx := slog.With("executionId", executionID, "sourceObjectKey", in.SourceObjectKey, "inputBucket", in.InputBucket)
	logCtx.Info("Flow execution started.", "mode", r.mode)

	r.begin(ctx, logCtx, executionID, in)

	// Started → Extracting
	text, err := r.extractor.Extract(ctx, in.InputBucket, in.SourceObjectKey)
	if err != nil {
		return r.fail(ctx, logCtx, executionID, StateExtracting, err)
	}

	// Extracting → Enriching
	result, err := r.enricher.Enrich(ctx, text, r.mode)
	if err != nil {
		return r.fail(ctx, logCtx, executionID, StateEnriching, err)
	}

	// Persistence happens only after full enrichment success; a partial
	// result is never written.
	if err := r.persister.Persist(ctx, in.DestObjectKey, result); err != nil {
		return r.fail(ctx, logCtx, executionID, StateEnriching, err)
	}

	r.finish(ctx, logCtx, executionID, models.ExecutionSucceeded, nil)
	logCtx.Info("Flow execution completed.", "destObjectKey", in.DestObjectKey, "summaryType", result.SummaryType)
	return Result{ExecutionID: executionID, State: StateCompleted}
}

func (r *Runner) begin(ctx context.Context, logCtx *slog.Logger, executionID string, in models.FlowInput) {
	exec := &models.FlowExecution{
		ExecutionID:     executionID,
		Status:          models.ExecutionRunning,
		SourceObjectKey: in.SourceObjectKey,
		InputBucket:     in.InputBucket,
		DestObjectKey:   in.DestObjectKey,
		ProjectName:     in.ProjectName,
	}
	if err := r.recorder.Begin(ctx, exec); err != nil {
		logCtx.Warn("Failed to record execution start.", "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, logCtx *slog.Logger, executionID string, from State, err error) Result {
	stageErr := models.AsStageError(err)
	logCtx.Error("Flow execution failed.", "state", string(from), "code", stageErr.Code, "error", stageErr)
	r.finish(ctx, logCtx, executionID, models.ExecutionFailed, stageErr)
	return Result{ExecutionID: executionID, State: StateFailed, Err: stageErr}
}

func (r *Runner) finish(ctx context.Context, logCtx *slog.Logger, executionID, status string, stageErr *models.StageError) {
	if err := r.recorder.Finish(ctx, executionID, status, stageErr); err != nil {
		logCtx.Warn("Failed to record execution outcome.", "status", status, "error", err)
	}
}
