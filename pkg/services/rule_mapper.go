package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/llm"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
	"github.com/tablelens-ai/tablelens-engine/pkg/prompts"
)

// RuleMapper partitions global business rules across the tables they apply
// to, via a single LLM pre-pass. The mapping is advisory: a failed or
// malformed mapping degrades to an empty map, which the orchestrator treats
// as "no global rule applies to any specific table" rather than an error.
type RuleMapper interface {
	MapGlobalRulesToTables(ctx context.Context, tables []models.TableInput, globalRules string) models.GlobalRuleMap
}

type ruleMapper struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewRuleMapper creates a rule mapper backed by the given client.
func NewRuleMapper(client llm.LLMClient, logger *zap.Logger) RuleMapper {
	return &ruleMapper{
		client: client,
		logger: logger.Named("rule-mapper"),
	}
}

// ruleMappingResponse is the wire shape of the mapping pre-pass response.
type ruleMappingResponse struct {
	Mappings []struct {
		Rule   string   `json:"rule"`
		Tables []string `json:"tables"`
	} `json:"mappings"`
}

// MapGlobalRulesToTables implements RuleMapper. With no rules or no tables it
// returns an empty map without contacting the remote service.
func (m *ruleMapper) MapGlobalRulesToTables(
	ctx context.Context,
	tables []models.TableInput,
	globalRules string,
) models.GlobalRuleMap {
	ruleMap := models.GlobalRuleMap{}
	if globalRules == "" || len(tables) == 0 {
		return ruleMap
	}

	mapped, err := m.mapRules(ctx, tables, globalRules)
	if err != nil {
		m.logger.Warn("global rule mapping failed, proceeding without a mapping",
			zap.Error(err))
		return ruleMap
	}
	return mapped
}

func (m *ruleMapper) mapRules(
	ctx context.Context,
	tables []models.TableInput,
	globalRules string,
) (models.GlobalRuleMap, error) {
	prompt := prompts.BuildRuleMappingPrompt(tables, globalRules)

	seed := analysisSeed
	result, err := m.client.GenerateResponse(ctx, prompt, prompts.RuleMappingSystemMessage(), llm.GenerateOptions{
		Temperature: 0,
		Seed:        &seed,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	resp, err := llm.ParseJSONObjectResponse[ruleMappingResponse](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parse rule mapping response: %w", err)
	}

	// Only table names from the actual input are kept; the model sometimes
	// invents plausible-sounding tables.
	known := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		known[t.Name] = struct{}{}
	}

	ruleMap := models.GlobalRuleMap{}
	for _, mapping := range resp.Mappings {
		if mapping.Rule == "" {
			continue
		}
		var kept []string
		for _, name := range mapping.Tables {
			if _, ok := known[name]; ok {
				kept = append(kept, name)
			}
		}
		if len(kept) > 0 {
			ruleMap[mapping.Rule] = kept
		}
	}

	m.logger.Info("global rules mapped",
		zap.Int("rules", len(ruleMap)),
		zap.Int("tables", len(tables)))
	return ruleMap, nil
}
