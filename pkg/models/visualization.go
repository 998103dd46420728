package models

// SchemaNode is one table in the visualization graph.
type SchemaNode struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// SchemaEdge is an inferred foreign-key-like relationship. Label carries the
// implicated column name.
type SchemaEdge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label" yaml:"label"`
}

// TableHotspot is a severity-weighted score for one table.
type TableHotspot struct {
	TableName string `json:"tableName" yaml:"tableName"`
	Score     int    `json:"score" yaml:"score"`
}

// SchemaVisualizationData is the derived node/edge/hotspot dataset handed to
// the presentation layer. A run with zero nodes yields nil rather than an
// empty structure, so "nothing to visualize" is distinguishable from an
// empty graph.
type SchemaVisualizationData struct {
	Nodes    []SchemaNode   `json:"nodes" yaml:"nodes"`
	Edges    []SchemaEdge   `json:"edges" yaml:"edges"`
	Hotspots []TableHotspot `json:"hotspots" yaml:"hotspots"`
}

// AggregatedResult is the merged output of a full analysis run. The flat
// arrays concatenate per-table contributions in canonical table input order.
type AggregatedResult struct {
	Issues            []Issue             `json:"issues" yaml:"issues"`
	RuleEffectiveness []RuleEffectiveness `json:"rule_effectiveness" yaml:"rule_effectiveness"`
	RuleConflicts     []RuleConflict      `json:"rule_conflicts" yaml:"rule_conflicts"`
	// Tables preserves each table's individual analysis, in input order.
	Tables []TableAnalysis `json:"tables" yaml:"tables"`
	// Visualization is nil when there was nothing to visualize.
	Visualization *SchemaVisualizationData `json:"visualization,omitempty" yaml:"visualization,omitempty"`
}
