package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "markdown fenced",
			input: "Here you go:\n```json\n{\"a\": 1}\n```\n",
			want:  `{"a": 1}`,
		},
		{
			name:  "think tags stripped",
			input: "<think>let me reason about tables</think>\n{\"a\": 1}",
			want:  `{"a": 1}`,
		},
		{
			name:  "nested braces and strings",
			input: `prefix {"a": {"b": "close} brace in string"}} suffix`,
			want:  `{"a": {"b": "close} brace in string"}}`,
		},
		{
			name:    "array is not an object",
			input:   `[1, 2, 3]`,
			wantErr: true,
		},
		{
			name:    "array of objects is not an object",
			input:   `[{"table_name": "t1"}]`,
			wantErr: true,
		},
		{
			name:    "fenced array of objects is not an object",
			input:   "```json\n[{\"table_name\": \"t1\"}, {\"table_name\": \"t2\"}]\n```",
			wantErr: true,
		},
		{
			name:    "no json at all",
			input:   "I could not analyze this table.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Array(t *testing.T) {
	got, err := ExtractJSON("```json\n[{\"rule\": \"r1\"}]\n```")
	require.NoError(t, err)
	assert.Equal(t, `[{"rule": "r1"}]`, got)
}

func TestParseJSONObjectResponse(t *testing.T) {
	type payload struct {
		TableName string `json:"table_name"`
		Score     int    `json:"hotspot_score"`
	}

	got, err := ParseJSONObjectResponse[payload]("```json\n{\"table_name\": \"dbo.customers\", \"hotspot_score\": 5}\n```")
	require.NoError(t, err)
	assert.Equal(t, "dbo.customers", got.TableName)
	assert.Equal(t, 5, got.Score)
}

func TestParseJSONObjectResponse_RejectsNonObject(t *testing.T) {
	type payload struct {
		TableName string `json:"table_name"`
	}

	_, err := ParseJSONObjectResponse[payload](`["not", "an", "object"]`)
	assert.Error(t, err)

	_, err = ParseJSONObjectResponse[payload](`[{"table_name": "t1"}]`)
	assert.Error(t, err, "elements of an array response must not be extracted")
}

func TestParseJSONObjectResponse_RejectsMismatchedTypes(t *testing.T) {
	type payload struct {
		Issues []string `json:"issues"`
	}
	_, err := ParseJSONObjectResponse[payload](`{"issues": "should be an array"}`)
	assert.Error(t, err)
}
