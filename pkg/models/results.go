package models

import (
	"encoding/json"
	"strings"

	"github.com/tablelens-ai/tablelens-engine/pkg/jsonutil"
)

// Severity grades an issue's impact.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Weight returns the hotspot weight for this severity (High=3, Medium=2,
// Low=1). Unknown severities weigh like Low.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// NormalizeSeverity maps model-supplied severity text onto the closed set,
// defaulting to Medium when the value is unrecognizable.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low", "minor", "info":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Reserved issue types. IssueTypeRuleViolation is a contract with the prompt:
// the model must use it for any issue stemming from a business rule, so the
// report layer can group rule violations. IssueTypeAnalysisError marks the
// synthetic issue a table receives when its analysis failed.
const (
	IssueTypeRuleViolation = "Business Rule Violation"
	IssueTypeAnalysisError = "Analysis Error"
)

// Issue is one detected data-quality problem. Issues have no identity beyond
// their position in the response; duplicates across tables are possible and
// are not deduplicated.
type Issue struct {
	TableName      string   `json:"table_name" yaml:"table_name"`
	ColumnName     string   `json:"column_name,omitempty" yaml:"column_name,omitempty"`
	Type           string   `json:"type" yaml:"type"`
	Description    string   `json:"description" yaml:"description"`
	Severity       Severity `json:"severity" yaml:"severity"`
	PossibleCause  string   `json:"possible_cause,omitempty" yaml:"possible_cause,omitempty"`
	Impact         string   `json:"impact,omitempty" yaml:"impact,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// UnmarshalJSON decodes an issue leniently: models occasionally emit numbers
// for column names and free-form severity casing.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw struct {
		TableName      json.RawMessage `json:"table_name"`
		ColumnName     json.RawMessage `json:"column_name"`
		Type           json.RawMessage `json:"type"`
		Description    json.RawMessage `json:"description"`
		Severity       json.RawMessage `json:"severity"`
		PossibleCause  json.RawMessage `json:"possible_cause"`
		Impact         json.RawMessage `json:"impact"`
		Recommendation json.RawMessage `json:"recommendation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.TableName = jsonutil.FlexibleStringValue(raw.TableName)
	i.ColumnName = jsonutil.FlexibleStringValue(raw.ColumnName)
	i.Type = jsonutil.FlexibleStringValue(raw.Type)
	i.Description = jsonutil.FlexibleStringValue(raw.Description)
	i.Severity = NormalizeSeverity(jsonutil.FlexibleStringValue(raw.Severity))
	i.PossibleCause = jsonutil.FlexibleStringValue(raw.PossibleCause)
	i.Impact = jsonutil.FlexibleStringValue(raw.Impact)
	i.Recommendation = jsonutil.FlexibleStringValue(raw.Recommendation)
	return nil
}

// RuleStatus is the canonical rule-effectiveness vocabulary.
type RuleStatus string

const (
	RuleStatusEffective      RuleStatus = "Effective"
	RuleStatusNeverTriggered RuleStatus = "Never Triggered"
	RuleStatusOverlyBroad    RuleStatus = "Overly Broad"
)

// NormalizeRuleStatus maps model output (including the legacy
// Triggered/Not Triggered/High Volume vocabulary) onto the canonical set.
func NormalizeRuleStatus(raw string) RuleStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "effective", "triggered":
		return RuleStatusEffective
	case "never triggered", "not triggered":
		return RuleStatusNeverTriggered
	case "overly broad", "high volume", "too broad":
		return RuleStatusOverlyBroad
	default:
		return RuleStatusNeverTriggered
	}
}

// GlobalTableName marks rule findings that apply across tables.
const GlobalTableName = "Global"

// RuleEffectiveness evaluates one business rule's usefulness against the
// table it was checked on.
type RuleEffectiveness struct {
	Rule           string     `json:"rule" yaml:"rule"`
	TableName      string     `json:"table_name" yaml:"table_name"` // or "Global"
	Status         RuleStatus `json:"status" yaml:"status"`
	Reasoning      string     `json:"reasoning" yaml:"reasoning"`
	Recommendation string     `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// UnmarshalJSON normalizes the status vocabulary on decode.
func (r *RuleEffectiveness) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rule           json.RawMessage `json:"rule"`
		TableName      json.RawMessage `json:"table_name"`
		Status         json.RawMessage `json:"status"`
		Reasoning      json.RawMessage `json:"reasoning"`
		Observation    json.RawMessage `json:"observation"` // legacy field name
		Recommendation json.RawMessage `json:"recommendation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Rule = jsonutil.FlexibleStringValue(raw.Rule)
	r.TableName = jsonutil.FlexibleStringValue(raw.TableName)
	r.Status = NormalizeRuleStatus(jsonutil.FlexibleStringValue(raw.Status))
	r.Reasoning = jsonutil.FlexibleStringValue(raw.Reasoning)
	if r.Reasoning == "" {
		r.Reasoning = jsonutil.FlexibleStringValue(raw.Observation)
	}
	r.Recommendation = jsonutil.FlexibleStringValue(raw.Recommendation)
	return nil
}

// RuleConflict is a detected contradiction between two or more rules.
type RuleConflict struct {
	ConflictingRules []string `json:"conflicting_rules" yaml:"conflicting_rules"`
	TableName        string   `json:"table_name,omitempty" yaml:"table_name,omitempty"` // "Global" if cross-table
	Description      string   `json:"description" yaml:"description"`
	Recommendation   string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// InferredRelationship is a foreign-key-like relationship the model inferred
// from one table toward another.
type InferredRelationship struct {
	ToTable  string `json:"to_table" yaml:"to_table"`
	OnColumn string `json:"on_column" yaml:"on_column"`
}

// TableAnalysis is the structured result of analyzing a single table.
type TableAnalysis struct {
	TableName             string                 `json:"table_name" yaml:"table_name"`
	Issues                []Issue                `json:"issues" yaml:"issues"`
	RuleEffectiveness     []RuleEffectiveness    `json:"rule_effectiveness" yaml:"rule_effectiveness"`
	RuleConflicts         []RuleConflict         `json:"rule_conflicts" yaml:"rule_conflicts"`
	InferredRelationships []InferredRelationship `json:"inferred_relationships" yaml:"inferred_relationships"`
	// HotspotScore is the model's own severity-weighted score for this
	// table. Nil when the model omitted it. The orchestrator recomputes
	// scores locally from the merged issue list; this value is only a
	// fallback for tables that produced no parseable issues.
	HotspotScore *int `json:"hotspot_score" yaml:"hotspot_score"`
}

// UnmarshalJSON decodes a table analysis with a lenient hotspot score.
func (t *TableAnalysis) UnmarshalJSON(data []byte) error {
	type alias TableAnalysis
	var raw struct {
		alias
		HotspotScore json.RawMessage `json:"hotspot_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = TableAnalysis(raw.alias)
	t.HotspotScore = jsonutil.FlexibleIntValue(raw.HotspotScore)
	return nil
}
