package services

import (
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// BuildVisualization derives the node/edge/hotspot dataset from per-table
// analyses. Analyses must already be in canonical input order; nodes, edges,
// and hotspots inherit that order so the output is deterministic.
//
// Edges are filtered against the set of analyzed table names: the model
// occasionally infers relationships toward tables it was told about but that
// are not part of this run, or invents names outright, and a dangling edge
// renders as a broken graph. Returns nil when there are no tables.
func BuildVisualization(analyses []models.TableAnalysis) *models.SchemaVisualizationData {
	if len(analyses) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(analyses))
	nodes := make([]models.SchemaNode, 0, len(analyses))
	for _, a := range analyses {
		if _, dup := known[a.TableName]; dup {
			continue
		}
		known[a.TableName] = struct{}{}
		nodes = append(nodes, models.SchemaNode{ID: a.TableName, Label: a.TableName})
	}

	edges := make([]models.SchemaEdge, 0)
	hotspots := make([]models.TableHotspot, 0, len(analyses))
	for _, a := range analyses {
		for _, rel := range a.InferredRelationships {
			if _, ok := known[rel.ToTable]; !ok {
				continue
			}
			if rel.ToTable == a.TableName {
				continue
			}
			edges = append(edges, models.SchemaEdge{
				From:  a.TableName,
				To:    rel.ToTable,
				Label: rel.OnColumn,
			})
		}
		hotspots = append(hotspots, models.TableHotspot{
			TableName: a.TableName,
			Score:     hotspotScore(a),
		})
	}

	return &models.SchemaVisualizationData{
		Nodes:    nodes,
		Edges:    edges,
		Hotspots: hotspots,
	}
}

// hotspotScore computes a table's severity-weighted score from its issue
// list (High=3, Medium=2, Low=1). When a table has no parsed issues the
// model's own score is used as a fallback, so a table whose issue list was
// lost to lenient parsing still registers on the heat map.
func hotspotScore(a models.TableAnalysis) int {
	if len(a.Issues) == 0 {
		if a.HotspotScore != nil && *a.HotspotScore > 0 {
			return *a.HotspotScore
		}
		return 0
	}
	score := 0
	for _, issue := range a.Issues {
		score += issue.Severity.Weight()
	}
	return score
}
