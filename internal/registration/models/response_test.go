package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundtrip(t *testing.T, value any) any {
	t.Helper()
	raw, err := EncodeResponse(value)
	require.NoError(t, err)
	decoded, err := SurveyDetail{QuestionID: "q", Raw: raw}.Response()
	require.NoError(t, err)
	return decoded
}

func TestResponse_MappingWithNumericKeys(t *testing.T) {
	got := roundtrip(t, map[string]any{"1": "a", "2": "b"})
	assert.Equal(t, map[int]any{1: "a", 2: "b"}, got)
}

func TestResponse_MappingWithNonNumericKeys(t *testing.T) {
	got := roundtrip(t, map[string]any{"x": "a"})
	assert.Equal(t, map[string]any{"x": "a"}, got)
}

func TestResponse_MixedKeysNoPartialCoercion(t *testing.T) {
	// A single unparsable key leaves the entire mapping with string keys.
	got := roundtrip(t, map[string]any{"1": "a", "x": "b"})
	assert.Equal(t, map[string]any{"1": "a", "x": "b"}, got)
}

func TestResponse_NegativeKeysCoerce(t *testing.T) {
	got := roundtrip(t, map[string]any{"-3": "a"})
	assert.Equal(t, map[int]any{-3: "a"}, got)
}

func TestResponse_ScalarAndList(t *testing.T) {
	assert.Equal(t, "free text", roundtrip(t, "free text"))
	assert.Equal(t, []any{"a", "b"}, roundtrip(t, []string{"a", "b"}))
	assert.Equal(t, float64(7), roundtrip(t, 7))
}

func TestResponse_InvalidJSON(t *testing.T) {
	_, err := SurveyDetail{QuestionID: "q", Raw: []byte("{not json")}.Response()
	require.Error(t, err)
}
