package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchResult_Ackable(t *testing.T) {
	result := BatchResult{
		Started: []string{"rh-1", "rh-2"},
		Dropped: []string{"rh-3"},
		Retry:   []string{"rh-4"},
	}

	acked := result.Ackable()
	assert.ElementsMatch(t, []string{"rh-1", "rh-2", "rh-3"}, acked)
	assert.NotContains(t, acked, "rh-4")
}

func TestBatchResult_Empty(t *testing.T) {
	assert.Empty(t, BatchResult{}.Ackable())
}
