package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"github.com/tenderworks/documentsummaryflow/internal/pdftext"
)

// TextExtractor converts raw document bytes to plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ObjectDownloader fetches a stored object's content.
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// ExtractorConfig holds configuration for the text-extractor service.
type ExtractorConfig struct {
	DownloadTimeout time.Duration
}

// ExtractorFunction downloads a source PDF and converts it to text.
type ExtractorFunction struct {
	downloader ObjectDownloader
	extractor  TextExtractor
	config     ExtractorConfig
}

// NewExtractor creates an ExtractorFunction backed by Cloud Storage and
// the MuPDF-based text extractor.
func NewExtractor(ctx context.Context) (*ExtractorFunction, error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	timeout := 2 * time.Minute
	if raw := gcp.GetEnv("DOWNLOAD_TIMEOUT_SECONDS", ""); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return &ExtractorFunction{
		downloader: &gcsDownloader{client: storageClient},
		extractor:  pdftext.NewExtractor(),
		config:     ExtractorConfig{DownloadTimeout: timeout},
	}, nil
}

// NewExtractorWith wires explicit dependencies. Used by tests and by
// hosts that already hold the clients.
func NewExtractorWith(downloader ObjectDownloader, extractor TextExtractor, config ExtractorConfig) *ExtractorFunction {
	if config.DownloadTimeout <= 0 {
		config.DownloadTimeout = 2 * time.Minute
	}
	return &ExtractorFunction{downloader: downloader, extractor: extractor, config: config}
}

// Extract retrieves the document and converts it to text. Errors carry
// stage result codes: 404 for a missing source, 422 when no text could
// be extracted, 500 otherwise.
func (f *ExtractorFunction) Extract(ctx context.Context, bucket, key string) (string, error) {
	downloadCtx, cancel := context.WithTimeout(ctx, f.config.DownloadTimeout)
	defer cancel()

	data, err := f.downloader.Download(downloadCtx, bucket, key)
	if err != nil {
		return "", err
	}
	return f.extractor.Extract(ctx, data)
}

// Process handles the workflow-facing invocation payload, mapping stage
// errors to the shared result-code response shape.
func (f *ExtractorFunction) Process(ctx context.Context, req *models.ExtractorRequest) *models.ExtractorResponse {
	args, err := req.Args()
	if err != nil {
		return extractorError(err)
	}

	logCtx := slog.With("inputBucket", args.InputBucket, "sourceObjectKey", args.SourceObjectKey)
	logCtx.Info("Starting text extraction.")

	text, err := f.Extract(ctx, args.InputBucket, args.SourceObjectKey)
	if err != nil {
		logCtx.Error("Text extraction failed.", "code", models.CodeOf(err), "error", err)
		return extractorError(err)
	}

	logCtx.Info("Text extraction complete.", "textLength", len(text))
	return &models.ExtractorResponse{
		StatusCode: models.StatusOK,
		Body: models.ExtractorBody{
			Message:   "Text extracted successfully",
			InputPDF:  fmt.Sprintf("gs://%s/%s", args.InputBucket, args.SourceObjectKey),
			ObjectKey: args.SourceObjectKey,
			PDFText:   text,
		},
	}
}

func extractorError(err error) *models.ExtractorResponse {
	stageErr := models.AsStageError(err)
	return &models.ExtractorResponse{
		StatusCode: stageErr.Code,
		Body:       models.ExtractorBody{Error: stageErr.Error()},
	}
}

type gcsDownloader struct {
	client *storage.Client
}

func (d *gcsDownloader) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	return gcp.DownloadObject(ctx, d.client, bucket, key)
}
