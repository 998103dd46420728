// Package datasource introspects live databases into the free-text table
// metadata the analysis pipeline consumes. Users who cannot paste schemas by
// hand point the engine at a connection string instead.
package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// DefaultSampleRows is how many sample rows an introspector fetches per
// table when the caller does not say otherwise.
const DefaultSampleRows = 10

// maxCellLength truncates oversized cell values in rendered samples; a blob
// column must not blow up the prompt.
const maxCellLength = 120

// Introspector discovers a database's tables and renders each one into the
// textual metadata an analysis run consumes.
type Introspector interface {
	// Introspect returns one TableInput per user table, in a stable
	// (schema, table) order.
	Introspect(ctx context.Context) ([]models.TableInput, error)
	// Close releases the underlying connection.
	Close() error
}

// columnMeta is one column's catalog metadata.
type columnMeta struct {
	Name       string
	DataType   string
	IsNullable bool
}

// columnStats is one column's computed profile.
type columnStats struct {
	Name          string
	RowCount      int64
	NonNullCount  int64
	DistinctCount int64
}

// renderSchema renders catalog metadata as a DDL-like column list. The text
// is for the model, not for execution, so types stay in catalog vocabulary.
func renderSchema(tableName string, cols []columnMeta) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", tableName))
	for i, col := range cols {
		sb.WriteString(fmt.Sprintf("  %s %s", col.Name, col.DataType))
		if !col.IsNullable {
			sb.WriteString(" NOT NULL")
		}
		if i < len(cols)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")
	return sb.String()
}

// renderStats renders column profiles as one line per column.
func renderStats(stats []columnStats) string {
	var sb strings.Builder
	for _, s := range stats {
		nullPct := 0.0
		if s.RowCount > 0 {
			nullPct = 100.0 * float64(s.RowCount-s.NonNullCount) / float64(s.RowCount)
		}
		sb.WriteString(fmt.Sprintf("%s: %.1f%% null, %d distinct of %d rows\n",
			s.Name, nullPct, s.DistinctCount, s.RowCount))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderSamples renders sample rows as a header line plus comma-separated
// values, NULL spelled out.
func renderSamples(columns []string, rows [][]*string) string {
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == nil {
				cells[i] = "NULL"
				continue
			}
			v := *cell
			if len(v) > maxCellLength {
				v = v[:maxCellLength] + "..."
			}
			cells[i] = v
		}
		sb.WriteString(strings.Join(cells, ", "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// qualifiedName joins schema and table the way users write it.
func qualifiedName(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}
