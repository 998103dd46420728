package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

func intPtr(n int) *int { return &n }

func TestBuildVisualization_NoTables(t *testing.T) {
	assert.Nil(t, BuildVisualization(nil))
	assert.Nil(t, BuildVisualization([]models.TableAnalysis{}))
}

func TestBuildVisualization_FiltersDanglingAndSelfEdges(t *testing.T) {
	analyses := []models.TableAnalysis{
		{
			TableName: "orders",
			InferredRelationships: []models.InferredRelationship{
				{ToTable: "customers", OnColumn: "customer_id"},
				{ToTable: "invented_table", OnColumn: "x_id"},
				{ToTable: "orders", OnColumn: "parent_order_id"},
			},
		},
		{TableName: "customers"},
	}

	viz := BuildVisualization(analyses)
	require.NotNil(t, viz)

	require.Len(t, viz.Nodes, 2)
	assert.Equal(t, models.SchemaNode{ID: "orders", Label: "orders"}, viz.Nodes[0])

	require.Len(t, viz.Edges, 1)
	assert.Equal(t, models.SchemaEdge{From: "orders", To: "customers", Label: "customer_id"}, viz.Edges[0])
}

func TestBuildVisualization_DuplicateTableNamesCollapseToOneNode(t *testing.T) {
	analyses := []models.TableAnalysis{
		{TableName: "t1"},
		{TableName: "t1"},
	}

	viz := BuildVisualization(analyses)
	require.NotNil(t, viz)
	assert.Len(t, viz.Nodes, 1)
	assert.Len(t, viz.Hotspots, 2, "hotspots stay per-analysis even when names collide")
}

func TestBuildVisualization_TwoTableScenario(t *testing.T) {
	analyses := []models.TableAnalysis{
		{TableName: "dbo.customers", HotspotScore: intPtr(2)},
		{
			TableName: "sales.orders",
			InferredRelationships: []models.InferredRelationship{
				{ToTable: "dbo.customers", OnColumn: "customer_id"},
			},
			HotspotScore: intPtr(5),
		},
	}

	viz := BuildVisualization(analyses)
	require.NotNil(t, viz)

	assert.Equal(t, []models.SchemaNode{
		{ID: "dbo.customers", Label: "dbo.customers"},
		{ID: "sales.orders", Label: "sales.orders"},
	}, viz.Nodes)
	assert.Equal(t, []models.SchemaEdge{
		{From: "sales.orders", To: "dbo.customers", Label: "customer_id"},
	}, viz.Edges)
	assert.Equal(t, []models.TableHotspot{
		{TableName: "dbo.customers", Score: 2},
		{TableName: "sales.orders", Score: 5},
	}, viz.Hotspots)
}

func TestHotspotScore_ComputedFromIssues(t *testing.T) {
	analysis := models.TableAnalysis{
		TableName: "t",
		Issues: []models.Issue{
			{Severity: models.SeverityHigh},
			{Severity: models.SeverityMedium},
			{Severity: models.SeverityLow},
			{Severity: models.SeverityLow},
		},
		HotspotScore: intPtr(50),
	}

	assert.Equal(t, 7, hotspotScore(analysis), "local recomputation wins over the model's score")
}

func TestHotspotScore_FallsBackToModelScore(t *testing.T) {
	assert.Equal(t, 5, hotspotScore(models.TableAnalysis{TableName: "t", HotspotScore: intPtr(5)}))
	assert.Equal(t, 0, hotspotScore(models.TableAnalysis{TableName: "t", HotspotScore: intPtr(-3)}),
		"negative model scores are discarded")
	assert.Equal(t, 0, hotspotScore(models.TableAnalysis{TableName: "t"}))
}
