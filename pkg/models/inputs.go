// Package models defines the data model for metadata analysis runs.
package models

import (
	"sort"

	"github.com/google/uuid"
)

// TableInput is one table's user-supplied metadata. All content fields are
// free text; any of them may be empty. Inputs are immutable for the duration
// of an analysis run and are not persisted beyond it.
type TableInput struct {
	// ID is an opaque unique token assigned when the input is created.
	ID string `json:"id"`
	// Name is the table name as the user supplied it, possibly
	// schema-qualified (e.g. "dbo.customers").
	Name string `json:"name"`
	// Schema is a DDL snippet or column list.
	Schema string `json:"schema"`
	// Stats is a free-text column statistics profile.
	Stats string `json:"stats"`
	// Samples holds sample rows rendered as text.
	Samples string `json:"samples"`
	// Rules holds business rules specific to this table.
	Rules string `json:"rules"`
}

// NewTableInput creates a TableInput with a fresh opaque ID.
func NewTableInput(name, schema, stats, samples, rules string) TableInput {
	return TableInput{
		ID:      uuid.NewString(),
		Name:    name,
		Schema:  schema,
		Stats:   stats,
		Samples: samples,
		Rules:   rules,
	}
}

// AnalysisInputs aggregates everything a single analysis run consumes.
type AnalysisInputs struct {
	// Tables under analysis. An empty list short-circuits to an empty
	// result without contacting the remote service.
	Tables []TableInput `json:"tables"`
	// Rules are global free-text business rules applying to all tables.
	Rules string `json:"rules"`
	// History is free-text narrative context (prior findings, domain notes).
	History string `json:"history"`
}

// TableNames returns the names of all tables in input order.
func (in *AnalysisInputs) TableNames() []string {
	names := make([]string, 0, len(in.Tables))
	for _, t := range in.Tables {
		names = append(names, t.Name)
	}
	return names
}

// GlobalRuleMap records which global rules apply to which tables, keyed by
// rule text. It is built fresh per run by the rule mapper, read-only during
// fan-out, and discarded after prompt construction.
type GlobalRuleMap map[string][]string

// RulesForTable returns the global rules whose applicable-table list
// contains tableName, sorted for deterministic prompt content.
func (m GlobalRuleMap) RulesForTable(tableName string) []string {
	var rules []string
	for rule, tables := range m {
		for _, t := range tables {
			if t == tableName {
				rules = append(rules, rule)
				break
			}
		}
	}
	sort.Strings(rules)
	return rules
}
