package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// MSSQLIntrospector introspects a SQL Server database.
type MSSQLIntrospector struct {
	db         *sql.DB
	sampleRows int
	logger     *zap.Logger
}

// NewMSSQLIntrospector connects to a SQL Server database. sampleRows <= 0
// falls back to DefaultSampleRows.
func NewMSSQLIntrospector(ctx context.Context, connStr string, sampleRows int, logger *zap.Logger) (*MSSQLIntrospector, error) {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return &MSSQLIntrospector{
		db:         db,
		sampleRows: sampleRows,
		logger:     logger.Named("mssql-introspector"),
	}, nil
}

// Close releases the connection.
func (m *MSSQLIntrospector) Close() error {
	return m.db.Close()
}

// quoteName returns a bracket-quoted SQL Server identifier, ] escaped as ]].
func quoteName(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

// Introspect implements Introspector.
func (m *MSSQLIntrospector) Introspect(ctx context.Context) ([]models.TableInput, error) {
	tables, err := m.listTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, apperrors.ErrNoTables
	}

	inputs := make([]models.TableInput, 0, len(tables))
	for _, tbl := range tables {
		input, err := m.introspectTable(ctx, tbl.schema, tbl.name)
		if err != nil {
			return nil, fmt.Errorf("introspect %s: %w", qualifiedName(tbl.schema, tbl.name), err)
		}
		inputs = append(inputs, input)
	}

	m.logger.Info("introspection complete", zap.Int("tables", len(inputs)))
	return inputs, nil
}

func (m *MSSQLIntrospector) listTables(ctx context.Context) ([]tableRef, error) {
	const query = `
		SELECT TABLE_SCHEMA, TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_SCHEMA, TABLE_NAME
	`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []tableRef
	for rows.Next() {
		var t tableRef
		if err := rows.Scan(&t.schema, &t.name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (m *MSSQLIntrospector) introspectTable(ctx context.Context, schema, table string) (models.TableInput, error) {
	cols, err := m.listColumns(ctx, schema, table)
	if err != nil {
		return models.TableInput{}, err
	}

	name := qualifiedName(schema, table)
	stats := m.columnStats(ctx, schema, table, cols)
	samples, err := m.sampleTable(ctx, schema, table)
	if err != nil {
		return models.TableInput{}, err
	}

	return models.NewTableInput(name, renderSchema(name, cols), renderStats(stats), samples, ""), nil
}

func (m *MSSQLIntrospector) listColumns(ctx context.Context, schema, table string) ([]columnMeta, error) {
	const query = `
		SELECT COLUMN_NAME, DATA_TYPE, CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION
	`
	rows, err := m.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var cols []columnMeta
	for rows.Next() {
		var c columnMeta
		if err := rows.Scan(&c.Name, &c.DataType, &c.IsNullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}

// columnStats profiles each column, skipping columns whose types SQL Server
// refuses to COUNT DISTINCT (text, ntext, image, xml).
func (m *MSSQLIntrospector) columnStats(ctx context.Context, schema, table string, cols []columnMeta) []columnStats {
	tableRef := quoteName(schema) + "." + quoteName(table)

	var stats []columnStats
	for _, col := range cols {
		quotedCol := quoteName(col.Name)
		query := fmt.Sprintf(`
			SELECT COUNT(*), COUNT(%s), COUNT(DISTINCT %s) FROM %s
		`, quotedCol, quotedCol, tableRef)

		var s columnStats
		s.Name = col.Name
		if err := m.db.QueryRowContext(ctx, query).Scan(&s.RowCount, &s.NonNullCount, &s.DistinctCount); err != nil {
			m.logger.Warn("column stats query failed, skipping column",
				zap.String("table", table),
				zap.String("column", col.Name),
				zap.Error(err))
			continue
		}
		stats = append(stats, s)
	}
	return stats
}

func (m *MSSQLIntrospector) sampleTable(ctx context.Context, schema, table string) (string, error) {
	tableRef := quoteName(schema) + "." + quoteName(table)
	query := fmt.Sprintf(`SELECT TOP %d * FROM %s`, m.sampleRows, tableRef)

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read sample columns: %w", err)
	}

	var sampled [][]*string
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan sample row: %w", err)
		}

		row := make([]*string, len(columns))
		for i, v := range raw {
			if v == nil {
				continue
			}
			var s string
			if b, ok := v.([]byte); ok {
				s = string(b)
			} else {
				s = fmt.Sprintf("%v", v)
			}
			row[i] = &s
		}
		sampled = append(sampled, row)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate sample rows: %w", err)
	}

	return renderSamples(columns, sampled), nil
}

var _ Introspector = (*MSSQLIntrospector)(nil)
