// Package services implements the analysis pipeline: per-table LLM analysis,
// concurrent fan-out with ordered merging, rule mapping, and derived graph
// construction.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/llm"
	"github.com/tablelens-ai/tablelens-engine/pkg/logging"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
	"github.com/tablelens-ai/tablelens-engine/pkg/prompts"
)

// analysisSeed pins sampling for analysis calls so repeated runs over the
// same inputs produce comparable output.
const analysisSeed = 42

// TableAnalyzer runs the LLM analysis for a single table.
//
// Analyze never fails: any error in the prompt/call/parse pipeline is
// converted into a degraded result carrying one synthetic high-severity
// issue, so one table's failure cannot abort or distort the rest of the
// batch.
type TableAnalyzer interface {
	Analyze(ctx context.Context, table models.TableInput, allTableNames []string, applicableRules, history string) models.TableAnalysis
}

type tableAnalyzer struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewTableAnalyzer creates a per-table analyzer backed by the given client.
// The client is expected to already carry the retry policy (llm.RetryingClient).
func NewTableAnalyzer(client llm.LLMClient, logger *zap.Logger) TableAnalyzer {
	return &tableAnalyzer{
		client: client,
		logger: logger.Named("table-analyzer"),
	}
}

// Analyze implements TableAnalyzer.
func (a *tableAnalyzer) Analyze(
	ctx context.Context,
	table models.TableInput,
	allTableNames []string,
	applicableRules, history string,
) models.TableAnalysis {
	analysis, err := a.analyze(ctx, table, allTableNames, applicableRules, history)
	if err != nil {
		a.logger.Error("table analysis failed, degrading",
			zap.String("table", table.Name),
			zap.Error(err))
		return DegradedAnalysis(table, err)
	}
	return analysis
}

func (a *tableAnalyzer) analyze(
	ctx context.Context,
	table models.TableInput,
	allTableNames []string,
	applicableRules, history string,
) (models.TableAnalysis, error) {
	prompt := prompts.BuildTableAnalysisPrompt(table, allTableNames, applicableRules, history)

	seed := analysisSeed
	result, err := a.client.GenerateResponse(ctx, prompt, prompts.TableAnalysisSystemMessage(), llm.GenerateOptions{
		Temperature: 0,
		Seed:        &seed,
	})
	if err != nil {
		return models.TableAnalysis{}, fmt.Errorf("LLM call failed: %w", err)
	}

	analysis, err := llm.ParseJSONObjectResponse[models.TableAnalysis](result.Content)
	if err != nil {
		return models.TableAnalysis{}, fmt.Errorf("parse table analysis response: %w", err)
	}

	// The model's copy of table_name is never trusted: it may be omitted,
	// truncated, or copied from another table mentioned in the prompt.
	analysis.TableName = table.Name
	for i := range analysis.Issues {
		analysis.Issues[i].TableName = table.Name
	}

	if analysis.Issues == nil {
		analysis.Issues = []models.Issue{}
	}
	if analysis.RuleEffectiveness == nil {
		analysis.RuleEffectiveness = []models.RuleEffectiveness{}
	}
	if analysis.RuleConflicts == nil {
		analysis.RuleConflicts = []models.RuleConflict{}
	}
	if analysis.InferredRelationships == nil {
		analysis.InferredRelationships = []models.InferredRelationship{}
	}

	return analysis, nil
}

// DegradedAnalysis converts a table-level failure into a present-but-degraded
// result: one synthetic issue describing the failure, empty everything else.
// Keeping the failed table in the report lets users see which tables
// succeeded and retry the rest.
func DegradedAnalysis(table models.TableInput, err error) models.TableAnalysis {
	return models.TableAnalysis{
		TableName: table.Name,
		Issues: []models.Issue{
			{
				TableName:      table.Name,
				Type:           models.IssueTypeAnalysisError,
				Description:    fmt.Sprintf("Analysis failed for this table: %s", logging.SanitizeError(err)),
				Severity:       models.SeverityHigh,
				Recommendation: "Re-run the analysis for this table. If the failure persists, check service credentials and quota.",
			},
		},
		RuleEffectiveness:     []models.RuleEffectiveness{},
		RuleConflicts:         []models.RuleConflict{},
		InferredRelationships: []models.InferredRelationship{},
	}
}
