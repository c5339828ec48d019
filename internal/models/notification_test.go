package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	body := []byte(`{"records":[{"bucket":{"name":"in"},"object":{"key":"folder/doc.pdf"}}]}`)

	ref, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, "in", ref.Bucket)
	assert.Equal(t, "folder/doc.pdf", ref.Key)
}

func TestParseNotification_FirstRecordWins(t *testing.T) {
	body := []byte(`{"records":[
		{"bucket":{"name":"in"},"object":{"key":"first.pdf"}},
		{"bucket":{"name":"other"},"object":{"key":"second.pdf"}}
	]}`)

	ref, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", ref.Key)
}

func TestParseNotification_DecodesPercentEncodedKeys(t *testing.T) {
	tests := []struct {
		name    string
		rawKey  string
		decoded string
	}{
		{"space as percent encoding", "folder/my%20doc.pdf", "folder/my doc.pdf"},
		{"space as plus", "folder/my+doc.pdf", "folder/my doc.pdf"},
		{"unicode", "%D8%AA%D9%86%D8%AF%D8%B1.pdf", "تندر.pdf"},
		{"plain key unchanged", "folder/doc.pdf", "folder/doc.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{"records":[{"bucket":{"name":"in"},"object":{"key":"` + tt.rawKey + `"}}]}`)
			ref, err := ParseNotification(body)
			require.NoError(t, err)
			assert.Equal(t, tt.decoded, ref.Key)
		})
	}
}

func TestParseNotification_EncodeDecodeRoundTrip(t *testing.T) {
	original := "reports/2026 Q1/σύνοψη μου.pdf"
	encoded := url.QueryEscape(original)

	body := []byte(`{"records":[{"bucket":{"name":"in"},"object":{"key":"` + encoded + `"}}]}`)
	ref, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, original, ref.Key)
}

func TestParseNotification_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"no records", `{"records":[]}`},
		{"records missing", `{}`},
		{"missing bucket", `{"records":[{"object":{"key":"doc.pdf"}}]}`},
		{"missing key", `{"records":[{"bucket":{"name":"in"}}]}`},
		{"invalid percent encoding", `{"records":[{"bucket":{"name":"in"},"object":{"key":"bad%zz.pdf"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNotification([]byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, StatusInvalidInput, CodeOf(err))
		})
	}
}
