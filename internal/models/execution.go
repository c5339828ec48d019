package models

import "time"

// Flow execution statuses tracked in Firestore.
const (
	ExecutionRunning   = "running"
	ExecutionSucceeded = "succeeded"
	ExecutionFailed    = "failed"
)

// FlowExecution is the status record for one orchestration flow
// execution. It gives operators traceability without the flow itself
// ever resuming from it; a retried document always replays from scratch.
type FlowExecution struct {
	ExecutionID     string    `firestore:"executionId,omitempty"`
	Status          string    `firestore:"status,omitempty"`
	SourceObjectKey string    `firestore:"sourceObjectKey,omitempty"`
	InputBucket     string    `firestore:"inputBucket,omitempty"`
	DestObjectKey   string    `firestore:"destObjectKey,omitempty"`
	ProjectName     string    `firestore:"projectName,omitempty"`
	ErrorCode       int       `firestore:"errorCode,omitempty"`
	ErrorDetails    string    `firestore:"errorDetails,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt,omitempty"`
	FinishedAt      time.Time `firestore:"finishedAt,omitempty"`
}
