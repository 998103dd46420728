package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/llm"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
	"github.com/tablelens-ai/tablelens-engine/pkg/services"
)

func newTestAnalyzeHandler(mock *llm.MockLLMClient) *AnalyzeHandler {
	logger := zap.NewNop()
	orch := services.NewOrchestrator(
		services.NewTableAnalyzer(mock, logger),
		services.NewRuleMapper(mock, logger),
		llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), logger),
		logger,
	)
	return NewAnalyzeHandler(orch, logger)
}

func postAnalyze(t *testing.T, h *AnalyzeHandler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	return rec
}

func TestAnalyze_EmptyTables(t *testing.T) {
	mock := llm.NewMockLLMClient()
	h := newTestAnalyzeHandler(mock)

	rec := postAnalyze(t, h, "/api/analyze", `{"tables": []}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Tables)
	assert.Nil(t, result.Visualization)
	assert.Equal(t, 0, mock.GenerateResponseCalls)
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	h := newTestAnalyzeHandler(llm.NewMockLLMClient())

	rec := postAnalyze(t, h, "/api/analyze", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestAnalyze_UnnamedTableRejected(t *testing.T) {
	h := newTestAnalyzeHandler(llm.NewMockLLMClient())

	rec := postAnalyze(t, h, "/api/analyze", `{"tables": [{"name": "  "}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_RunsPipeline(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, opts llm.GenerateOptions) (*llm.GenerateResult, error) {
		return &llm.GenerateResult{Content: `{
			"table_name": "users",
			"issues": [{"table_name": "users", "type": "Null Values", "description": "nulls", "severity": "High"}],
			"rule_effectiveness": [], "rule_conflicts": [], "inferred_relationships": []
		}`}, nil
	}
	h := newTestAnalyzeHandler(mock)

	rec := postAnalyze(t, h, "/api/analyze", `{"tables": [{"name": "users", "schema": "CREATE TABLE users (id int)"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "users", result.Tables[0].TableName)
	require.Len(t, result.Issues, 1)
	require.NotNil(t, result.Visualization)
	require.Len(t, result.Visualization.Hotspots, 1)
	assert.Equal(t, 3, result.Visualization.Hotspots[0].Score)
}

func TestAnalyze_YAMLExport(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, opts llm.GenerateOptions) (*llm.GenerateResult, error) {
		return &llm.GenerateResult{Content: `{"table_name": "t1", "issues": [], "rule_effectiveness": [], "rule_conflicts": [], "inferred_relationships": []}`}, nil
	}
	h := newTestAnalyzeHandler(mock)

	rec := postAnalyze(t, h, "/api/analyze?format=yaml", `{"tables": [{"name": "t1"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "table_name: t1")
}
