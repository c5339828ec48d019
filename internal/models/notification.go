package models

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// StorageNotification is the envelope the storage-to-queue collaborator
// places on the queue when an object is created. Object keys arrive
// percent-encoded.
type StorageNotification struct {
	Records []NotificationRecord `json:"records"`
}

type NotificationRecord struct {
	Bucket NotificationBucket `json:"bucket"`
	Object NotificationObject `json:"object"`
}

type NotificationBucket struct {
	Name string `json:"name"`
}

type NotificationObject struct {
	Key string `json:"key"`
}

// ParseNotification parses a notification envelope and returns the
// source object reference for its first record, with the object key
// URL-decoded. Any missing piece is a permanent, non-retryable error
// for the carrying message.
func ParseNotification(body []byte) (SourceObjectRef, error) {
	var envelope StorageNotification
	if err := json.Unmarshal(body, &envelope); err != nil {
		return SourceObjectRef{}, WrapStageError(StatusInvalidInput, "notification envelope is not valid JSON", err)
	}
	if len(envelope.Records) == 0 {
		return SourceObjectRef{}, NewStageError(StatusInvalidInput, "notification envelope has no records")
	}

	record := envelope.Records[0]
	if record.Bucket.Name == "" {
		return SourceObjectRef{}, NewStageError(StatusInvalidInput, "notification record is missing bucket name")
	}
	if record.Object.Key == "" {
		return SourceObjectRef{}, NewStageError(StatusInvalidInput, "notification record is missing object key")
	}

	key, err := url.QueryUnescape(record.Object.Key)
	if err != nil {
		return SourceObjectRef{}, WrapStageError(StatusInvalidInput, fmt.Sprintf("object key %q is not valid percent-encoding", record.Object.Key), err)
	}

	return SourceObjectRef{Bucket: record.Bucket.Name, Key: key}, nil
}
