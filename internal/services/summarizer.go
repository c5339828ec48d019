package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// TextGenerator issues a single inference call and returns the
// response's primary text content.
type TextGenerator interface {
	GenerateText(ctx context.Context, mode, prompt string) (string, error)
}

// SummarizerFunction builds a mode-specific prompt from extracted text,
// invokes the inference client once, and returns the enrichment result.
// It never retries; retry policy belongs to whoever starts a fresh flow
// execution.
type SummarizerFunction struct {
	generator TextGenerator
}

// NewSummarizer creates a SummarizerFunction backed by Vertex AI.
func NewSummarizer(ctx context.Context) (*SummarizerFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	vertexClient, err := gcp.NewVertexClient(ctx,
		projectID,
		gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		gcp.GetEnv("VERTEX_AI_MODEL", "gemini-1.5-pro"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return &SummarizerFunction{generator: vertexClient}, nil
}

// NewSummarizerWith wires an explicit generator. Used by tests.
func NewSummarizerWith(generator TextGenerator) *SummarizerFunction {
	return &SummarizerFunction{generator: generator}
}

// NormalizeMode maps an arbitrary mode string onto a supported one,
// falling back to the default summary mode.
func NormalizeMode(mode string) string {
	switch mode {
	case models.ModeExecutive, models.ModeBullets, models.ModeDetailed, models.ModeStructuredExtract:
		return mode
	default:
		return models.ModeDefault
	}
}

// Enrich produces the terminal artifact for the given text and mode.
func (f *SummarizerFunction) Enrich(ctx context.Context, text, mode string) (*models.EnrichmentResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewStageError(models.StatusInvalidInput, "no text provided to summarize")
	}
	mode = NormalizeMode(mode)

	prompt := gcp.PromptForMode(mode) + "\n\n" + text
	output, err := f.generator.GenerateText(ctx, mode, prompt)
	if err != nil {
		return nil, models.WrapStageError(models.StatusInternal, "inference call failed", err)
	}

	if refused(output) {
		return nil, models.NewStageError(models.StatusInternal, "model refused to process the document")
	}
	if mode == models.ModeStructuredExtract && !json.Valid([]byte(output)) {
		return nil, models.NewStageError(models.StatusInternal, "structured extraction did not return valid JSON")
	}

	return &models.EnrichmentResult{Summary: output, SummaryType: mode}, nil
}

// Process handles the workflow-facing invocation payload.
func (f *SummarizerFunction) Process(ctx context.Context, req *models.SummarizerRequest) *models.SummarizerResponse {
	logCtx := slog.With("mode", req.Mode, "contentLength", len(req.Content))
	logCtx.Info("Starting summarization.")

	result, err := f.Enrich(ctx, req.Content, req.Mode)
	if err != nil {
		stageErr := models.AsStageError(err)
		logCtx.Error("Summarization failed.", "code", stageErr.Code, "error", stageErr)
		return &models.SummarizerResponse{
			StatusCode: stageErr.Code,
			Body:       models.SummarizerBody{Error: stageErr.Error()},
		}
	}

	logCtx.Info("Summarization complete.", "summaryType", result.SummaryType)
	return &models.SummarizerResponse{
		StatusCode: models.StatusOK,
		Body: models.SummarizerBody{
			Summary:     result.Summary,
			SummaryType: result.SummaryType,
		},
	}
}

// Phrases the model emits when it declines rather than summarizes. A
// refusal must fail the stage, not get persisted as a result.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

func refused(output string) bool {
	lower := strings.ToLower(output)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
