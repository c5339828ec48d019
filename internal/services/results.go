package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/tenderworks/documentsummaryflow/internal/gcp"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// ResultStore writes enrichment results to the output bucket.
type ResultStore struct {
	bucket *storage.BucketHandle
	name   string
}

func NewResultStore(client *storage.Client, bucketName string) (*ResultStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("result bucket name must not be empty")
	}
	return &ResultStore{bucket: client.Bucket(bucketName), name: bucketName}, nil
}

// Persist writes the result as a JSON document at the derived
// destination key. The key is a pure function of the source object key,
// so repeated processing of the same document overwrites the same
// object.
func (s *ResultStore) Persist(ctx context.Context, destObjectKey string, result *models.EnrichmentResult) error {
	if err := gcp.WriteJSONObject(ctx, s.bucket, destObjectKey, result); err != nil {
		return models.WrapStageError(models.StatusInternal, fmt.Sprintf("failed to persist result to gs://%s/%s", s.name, destObjectKey), err)
	}
	return nil
}
