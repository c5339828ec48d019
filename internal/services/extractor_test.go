package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderworks/documentsummaryflow/internal/models"
)

type fakeDownloader struct {
	data map[string][]byte
	err  error
}

func (f *fakeDownloader) Download(_ context.Context, bucket, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[bucket+"/"+key]
	if !ok {
		return nil, models.NewStageError(models.StatusNotFound, "object not found")
	}
	return data, nil
}

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

func nodeRequest(bucket, key string) *models.ExtractorRequest {
	return &models.ExtractorRequest{
		Node: models.ExtractorNode{Inputs: []models.ExtractorInput{
			{Value: models.ExtractArgs{SourceObjectKey: key, InputBucket: bucket}},
		}},
	}
}

func TestExtractorProcess_Success(t *testing.T) {
	downloader := &fakeDownloader{data: map[string][]byte{"in/folder/doc.pdf": []byte("%PDF-...")}}
	f := NewExtractorWith(downloader, &fakeTextExtractor{text: "Hello world\n"}, ExtractorConfig{DownloadTimeout: time.Second})

	resp := f.Process(context.Background(), nodeRequest("in", "folder/doc.pdf"))

	require.Equal(t, models.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello world\n", resp.Body.PDFText)
	assert.Equal(t, "folder/doc.pdf", resp.Body.ObjectKey)
	assert.Equal(t, "gs://in/folder/doc.pdf", resp.Body.InputPDF)
	assert.Equal(t, "Text extracted successfully", resp.Body.Message)
}

func TestExtractorProcess_MissingFieldsIsBadRequest(t *testing.T) {
	f := NewExtractorWith(&fakeDownloader{}, &fakeTextExtractor{}, ExtractorConfig{})

	resp := f.Process(context.Background(), &models.ExtractorRequest{})
	assert.Equal(t, models.StatusInvalidInput, resp.StatusCode)
	assert.NotEmpty(t, resp.Body.Error)
}

func TestExtractorProcess_MissingObjectIsNotFound(t *testing.T) {
	f := NewExtractorWith(&fakeDownloader{data: map[string][]byte{}}, &fakeTextExtractor{}, ExtractorConfig{})

	resp := f.Process(context.Background(), nodeRequest("in", "missing.pdf"))
	assert.Equal(t, models.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Body.Error)
}

func TestExtractorProcess_EmptyExtractionIsUnprocessable(t *testing.T) {
	downloader := &fakeDownloader{data: map[string][]byte{"in/blank.pdf": []byte("%PDF-...")}}
	extractor := &fakeTextExtractor{err: models.NewStageError(models.StatusUnprocessable, "no text could be extracted from the document")}
	f := NewExtractorWith(downloader, extractor, ExtractorConfig{})

	resp := f.Process(context.Background(), nodeRequest("in", "blank.pdf"))
	assert.Equal(t, models.StatusUnprocessable, resp.StatusCode)
	assert.Empty(t, resp.Body.PDFText)
}
