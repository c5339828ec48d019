package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderworks/documentsummaryflow/internal/models"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeEnricher struct {
	result *models.EnrichmentResult
	err    error
	calls  int
	text   string
	mode   string
}

func (f *fakeEnricher) Enrich(_ context.Context, text, mode string) (*models.EnrichmentResult, error) {
	f.calls++
	f.text = text
	f.mode = mode
	return f.result, f.err
}

type fakePersister struct {
	err     error
	destKey string
	stored  *models.EnrichmentResult
	calls   int
}

func (f *fakePersister) Persist(_ context.Context, destKey string, result *models.EnrichmentResult) error {
	f.calls++
	f.destKey = destKey
	f.stored = result
	return f.err
}

type fakeRecorder struct {
	began    *models.FlowExecution
	finished string
	stageErr *models.StageError
}

func (f *fakeRecorder) Begin(_ context.Context, exec *models.FlowExecution) error {
	f.began = exec
	return nil
}

func (f *fakeRecorder) Finish(_ context.Context, _ string, status string, stageErr *models.StageError) error {
	f.finished = status
	f.stageErr = stageErr
	return nil
}

func flowInput() models.FlowInput {
	return models.FlowInput{
		SourceObjectKey: "folder/doc.pdf",
		ProjectName:     "tenders",
		InputBucket:     "in",
		DestObjectKey:   "folder/doc.pdf.json",
	}
}

func TestRun_CompletesAndPersistsResult(t *testing.T) {
	extractor := &fakeExtractor{text: "Hello world\n"}
	enricher := &fakeEnricher{result: &models.EnrichmentResult{Summary: "short", SummaryType: "default"}}
	persister := &fakePersister{}
	recorder := &fakeRecorder{}
	r := NewRunner(extractor, enricher, persister, recorder, models.ModeDefault)

	result := r.Run(context.Background(), "exec-1", flowInput())

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, "exec-1", result.ExecutionID)
	assert.Nil(t, result.Err)

	assert.Equal(t, "Hello world\n", enricher.text)
	assert.Equal(t, models.ModeDefault, enricher.mode)

	require.Equal(t, 1, persister.calls)
	assert.Equal(t, "folder/doc.pdf.json", persister.destKey)
	assert.Equal(t, "default", persister.stored.SummaryType)

	require.NotNil(t, recorder.began)
	assert.Equal(t, models.ExecutionRunning, recorder.began.Status)
	assert.Equal(t, models.ExecutionSucceeded, recorder.finished)
}

func TestRun_ExtractionFailureSkipsEnrichment(t *testing.T) {
	extractor := &fakeExtractor{err: models.NewStageError(models.StatusUnprocessable, "no text could be extracted from the document")}
	enricher := &fakeEnricher{}
	persister := &fakePersister{}
	recorder := &fakeRecorder{}
	r := NewRunner(extractor, enricher, persister, recorder, models.ModeDefault)

	result := r.Run(context.Background(), "exec-2", flowInput())

	assert.Equal(t, StateFailed, result.State)
	require.NotNil(t, result.Err)
	assert.Equal(t, models.StatusUnprocessable, result.Err.Code)

	// No enrichment is attempted and no result is persisted.
	assert.Equal(t, 0, enricher.calls)
	assert.Equal(t, 0, persister.calls)
	assert.Equal(t, models.ExecutionFailed, recorder.finished)
	require.NotNil(t, recorder.stageErr)
	assert.Equal(t, models.StatusUnprocessable, recorder.stageErr.Code)
}

func TestRun_EnrichmentFailureIsTerminal(t *testing.T) {
	extractor := &fakeExtractor{text: "some text"}
	enricher := &fakeEnricher{err: models.NewStageError(models.StatusInternal, "inference call failed")}
	persister := &fakePersister{}
	r := NewRunner(extractor, enricher, persister, &fakeRecorder{}, models.ModeDefault)

	result := r.Run(context.Background(), "exec-3", flowInput())

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 0, persister.calls)
}

func TestRun_PersistFailureFails(t *testing.T) {
	extractor := &fakeExtractor{text: "some text"}
	enricher := &fakeEnricher{result: &models.EnrichmentResult{Summary: "s", SummaryType: "default"}}
	persister := &fakePersister{err: models.NewStageError(models.StatusInternal, "write failed")}
	recorder := &fakeRecorder{}
	r := NewRunner(extractor, enricher, persister, recorder, models.ModeDefault)

	result := r.Run(context.Background(), "exec-4", flowInput())

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, models.ExecutionFailed, recorder.finished)
}

func TestRun_ModeFromConfiguration(t *testing.T) {
	extractor := &fakeExtractor{text: "tender text"}
	enricher := &fakeEnricher{result: &models.EnrichmentResult{Summary: "{}", SummaryType: models.ModeStructuredExtract}}
	r := NewRunner(extractor, enricher, &fakePersister{}, &fakeRecorder{}, models.ModeStructuredExtract)

	result := r.Run(context.Background(), "exec-5", flowInput())

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, models.ModeStructuredExtract, enricher.mode)
}

func TestNewRunner_EmptyModeDefaults(t *testing.T) {
	r := NewRunner(&fakeExtractor{}, &fakeEnricher{}, &fakePersister{}, &fakeRecorder{}, "")
	assert.Equal(t, models.ModeDefault, r.mode)
}
