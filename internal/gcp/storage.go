package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/tenderworks/documentsummaryflow/internal/models"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// DownloadObject reads the full content of a storage object into memory.
// A missing object is surfaced as a not-found stage error so callers can
// distinguish it from transient storage failures.
func DownloadObject(ctx context.Context, client *storage.Client, bucket, object string) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, models.WrapStageError(models.StatusNotFound, fmt.Sprintf("object gs://%s/%s not found", bucket, object), err)
		}
		return nil, fmt.Errorf("failed to open reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// WriteJSONObject marshals v and writes it to the given object,
// unconditionally overwriting any previous content. Repeated delivery of
// the same source object re-targets the same destination key, so last
// write wins by design of the key derivation.
func WriteJSONObject(ctx context.Context, bucket *storage.BucketHandle, objectName string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", objectName, err)
	}

	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(payload); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write for %s: %w", objectName, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 404
}
