package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/llm"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// errMissingResult covers the case of a work item vanishing from the result
// set, which the pool contract rules out but the merge guards against anyway.
var errMissingResult = errors.New("no analysis result produced for table")

// Orchestrator drives a full analysis run: global rule mapping, deterministic
// sample scanning, bounded concurrent per-table LLM analysis, and ordered
// aggregation of the results.
type Orchestrator interface {
	// AnalyzeAll analyzes every table in the inputs and returns the merged
	// result. It returns an error only for run-level failures (currently
	// just context cancellation before any work completes); per-table
	// failures surface as degraded entries inside the result.
	AnalyzeAll(ctx context.Context, inputs models.AnalysisInputs) (*models.AggregatedResult, error)

	// AnalyzeSingleTable analyzes one table in isolation. Global rules are
	// passed to the table verbatim since there is no mapping pre-pass.
	AnalyzeSingleTable(ctx context.Context, table models.TableInput, globalRules, history string) models.TableAnalysis
}

type orchestrator struct {
	analyzer   TableAnalyzer
	ruleMapper RuleMapper
	pool       *llm.WorkerPool
	logger     *zap.Logger
}

// NewOrchestrator wires the analysis pipeline together.
func NewOrchestrator(
	analyzer TableAnalyzer,
	ruleMapper RuleMapper,
	pool *llm.WorkerPool,
	logger *zap.Logger,
) Orchestrator {
	return &orchestrator{
		analyzer:   analyzer,
		ruleMapper: ruleMapper,
		pool:       pool,
		logger:     logger.Named("orchestrator"),
	}
}

// AnalyzeAll implements Orchestrator.
func (o *orchestrator) AnalyzeAll(ctx context.Context, inputs models.AnalysisInputs) (*models.AggregatedResult, error) {
	if len(inputs.Tables) == 0 {
		o.logger.Info("no tables to analyze")
		return &models.AggregatedResult{
			Issues:            []models.Issue{},
			RuleEffectiveness: []models.RuleEffectiveness{},
			RuleConflicts:     []models.RuleConflict{},
			Tables:            []models.TableAnalysis{},
		}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ruleMap := o.ruleMapper.MapGlobalRulesToTables(ctx, inputs.Tables, inputs.Rules)
	allNames := inputs.TableNames()

	items := make([]llm.WorkItem[models.TableAnalysis], 0, len(inputs.Tables))
	for _, table := range inputs.Tables {
		table := table
		rules := applicableRules(table, ruleMap)
		items = append(items, llm.WorkItem[models.TableAnalysis]{
			ID: table.ID,
			Execute: func(ctx context.Context) (models.TableAnalysis, error) {
				return o.analyzer.Analyze(ctx, table, allNames, rules, inputs.History), nil
			},
		})
	}

	total := len(items)
	results := llm.Process(ctx, o.pool, items, func(completed, total int) {
		o.logger.Info("table analysis progress",
			zap.Int("completed", completed),
			zap.Int("total", total))
	})

	// Results arrive in completion order; restore canonical input order via
	// the table IDs before merging.
	byID := make(map[string]models.TableAnalysis, len(results))
	for _, r := range results {
		if r.Err != nil {
			// Process only fails an item when the run context died before
			// the item started; the analyzer itself degrades internally.
			byID[r.ID] = models.TableAnalysis{}
			continue
		}
		byID[r.ID] = r.Result
	}

	analyses := make([]models.TableAnalysis, 0, total)
	for _, table := range inputs.Tables {
		analysis, ok := byID[table.ID]
		if !ok || analysis.TableName == "" {
			cause := ctx.Err()
			if cause == nil {
				cause = errMissingResult
			}
			analysis = DegradedAnalysis(table, cause)
		}
		if local := ScanSamplesForInjection(table); len(local) > 0 {
			analysis.Issues = append(local, analysis.Issues...)
		}
		analyses = append(analyses, analysis)
	}

	result := merge(analyses)
	result.Visualization = BuildVisualization(analyses)

	o.logger.Info("analysis run complete",
		zap.Int("tables", len(analyses)),
		zap.Int("issues", len(result.Issues)),
		zap.Int("rule_findings", len(result.RuleEffectiveness)),
		zap.Int("conflicts", len(result.RuleConflicts)))
	return result, nil
}

// AnalyzeSingleTable implements Orchestrator.
func (o *orchestrator) AnalyzeSingleTable(
	ctx context.Context,
	table models.TableInput,
	globalRules, history string,
) models.TableAnalysis {
	rules := joinRules(globalRules, table.Rules)
	analysis := o.analyzer.Analyze(ctx, table, []string{table.Name}, rules, history)
	if local := ScanSamplesForInjection(table); len(local) > 0 {
		analysis.Issues = append(local, analysis.Issues...)
	}
	return analysis
}

// applicableRules assembles the rules text for one table: the global rules
// mapped to it plus its own table-specific rules.
func applicableRules(table models.TableInput, ruleMap models.GlobalRuleMap) string {
	mapped := ruleMap.RulesForTable(table.Name)
	return joinRules(strings.Join(mapped, "\n"), table.Rules)
}

func joinRules(global, tableSpecific string) string {
	global = strings.TrimSpace(global)
	tableSpecific = strings.TrimSpace(tableSpecific)
	switch {
	case global == "":
		return tableSpecific
	case tableSpecific == "":
		return global
	default:
		return global + "\n" + tableSpecific
	}
}

// merge concatenates per-table contributions into the flat result arrays,
// preserving the order of the analyses slice.
func merge(analyses []models.TableAnalysis) *models.AggregatedResult {
	result := &models.AggregatedResult{
		Issues:            []models.Issue{},
		RuleEffectiveness: []models.RuleEffectiveness{},
		RuleConflicts:     []models.RuleConflict{},
		Tables:            analyses,
	}
	for _, a := range analyses {
		result.Issues = append(result.Issues, a.Issues...)
		result.RuleEffectiveness = append(result.RuleEffectiveness, a.RuleEffectiveness...)
		result.RuleConflicts = append(result.RuleConflicts, a.RuleConflicts...)
	}
	return result
}
