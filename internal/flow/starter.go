package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/google/uuid"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// Starter starts one flow execution for a flow input and returns its
// execution identifier. Starts are fire-and-forget: the caller never
// awaits completion.
type Starter interface {
	Start(ctx context.Context, in models.FlowInput) (string, error)
}

// WorkflowsStarter starts executions of a named, versioned Cloud
// Workflow, passing the flow input as the execution argument.
type WorkflowsStarter struct {
	client *executions.Client
	parent string
}

func NewWorkflowsStarter(ctx context.Context, projectID, location, workflowID string) (*WorkflowsStarter, error) {
	if projectID == "" || location == "" || workflowID == "" {
		return nil, fmt.Errorf("projectID, location and workflowID must all be set")
	}
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return &WorkflowsStarter{
		client: client,
		parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID),
	}, nil
}

func (s *WorkflowsStarter) Start(ctx context.Context, in models.FlowInput) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to marshal flow input: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: s.parent,
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}
	exec, err := s.client.CreateExecution(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create workflow execution: %w", err)
	}
	return exec.GetName(), nil
}

func (s *WorkflowsStarter) Close() error {
	return s.client.Close()
}

// LocalStarter runs flow executions in-process on the runner. Each start
// detaches from the caller's context so the dispatcher's batch handling
// never blocks on flow completion; the execution carries its own
// timeout budget instead.
type LocalStarter struct {
	runner  *Runner
	timeout time.Duration
}

func NewLocalStarter(runner *Runner, timeout time.Duration) *LocalStarter {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &LocalStarter{runner: runner, timeout: timeout}
}

func (s *LocalStarter) Start(_ context.Context, in models.FlowInput) (string, error) {
	executionID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		result := s.runner.Run(ctx, executionID, in)
		if result.State == StateFailed {
			slog.Warn("Local flow execution ended in Failed state.", "executionId", executionID, "sourceObjectKey", in.SourceObjectKey)
		}
	}()
	return executionID, nil
}
