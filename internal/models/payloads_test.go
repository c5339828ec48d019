package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDestObjectKey(t *testing.T) {
	assert.Equal(t, "folder/doc.pdf.json", DeriveDestObjectKey("folder/doc.pdf"))

	// Deterministic: repeated derivation always targets the same key.
	assert.Equal(t, DeriveDestObjectKey("a/b.pdf"), DeriveDestObjectKey("a/b.pdf"))
}

func TestNewFlowInput(t *testing.T) {
	in := NewFlowInput(SourceObjectRef{Bucket: "in", Key: "folder/doc.pdf"}, "tenders")

	assert.Equal(t, "folder/doc.pdf", in.SourceObjectKey)
	assert.Equal(t, "in", in.InputBucket)
	assert.Equal(t, "tenders", in.ProjectName)
	assert.Equal(t, "folder/doc.pdf.json", in.DestObjectKey)
}

func TestExtractorRequest_Args(t *testing.T) {
	req := &ExtractorRequest{
		Node: ExtractorNode{Inputs: []ExtractorInput{
			{Value: ExtractArgs{SourceObjectKey: "doc.pdf", InputBucket: "in"}},
		}},
	}

	args, err := req.Args()
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", args.SourceObjectKey)
	assert.Equal(t, "in", args.InputBucket)
}

func TestExtractorRequest_Args_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *ExtractorRequest
	}{
		{"no inputs", &ExtractorRequest{}},
		{"missing key", &ExtractorRequest{Node: ExtractorNode{Inputs: []ExtractorInput{{Value: ExtractArgs{InputBucket: "in"}}}}}},
		{"missing bucket", &ExtractorRequest{Node: ExtractorNode{Inputs: []ExtractorInput{{Value: ExtractArgs{SourceObjectKey: "doc.pdf"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Args()
			require.Error(t, err)
			assert.Equal(t, StatusInvalidInput, CodeOf(err))
		})
	}
}

func TestStageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapStageError(StatusNotFound, "object missing", cause)

	assert.Equal(t, "object missing: connection reset", err.Error())
	assert.Equal(t, StatusNotFound, CodeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf_Defaults(t *testing.T) {
	assert.Equal(t, StatusInternal, CodeOf(errors.New("plain error")))

	se := AsStageError(errors.New("plain error"))
	assert.Equal(t, StatusInternal, se.Code)
}
