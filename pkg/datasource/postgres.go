package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
	"github.com/tablelens-ai/tablelens-engine/pkg/logging"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// PostgresIntrospector introspects a PostgreSQL database.
type PostgresIntrospector struct {
	pool       *pgxpool.Pool
	sampleRows int
	logger     *zap.Logger
}

// NewPostgresIntrospector connects to a PostgreSQL database. sampleRows <= 0
// falls back to DefaultSampleRows.
func NewPostgresIntrospector(ctx context.Context, connStr string, sampleRows int, logger *zap.Logger) (*PostgresIntrospector, error) {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresIntrospector{
		pool:       pool,
		sampleRows: sampleRows,
		logger:     logger.Named("pg-introspector"),
	}, nil
}

// Close releases the connection pool.
func (p *PostgresIntrospector) Close() error {
	p.pool.Close()
	return nil
}

// Introspect implements Introspector.
func (p *PostgresIntrospector) Introspect(ctx context.Context) ([]models.TableInput, error) {
	tables, err := p.listTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, apperrors.ErrNoTables
	}

	inputs := make([]models.TableInput, 0, len(tables))
	for _, tbl := range tables {
		input, err := p.introspectTable(ctx, tbl.schema, tbl.name)
		if err != nil {
			return nil, fmt.Errorf("introspect %s: %w", qualifiedName(tbl.schema, tbl.name), err)
		}
		inputs = append(inputs, input)
	}

	p.logger.Info("introspection complete",
		zap.String("conn", logging.SanitizeConnectionString(p.pool.Config().ConnString())),
		zap.Int("tables", len(inputs)))
	return inputs, nil
}

type tableRef struct {
	schema string
	name   string
}

func (p *PostgresIntrospector) listTables(ctx context.Context) ([]tableRef, error) {
	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY table_schema, table_name
	`
	rows, err := p.pool.Query(ctx, query)
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

func (p *PostgresIntrospector) introspectTable(ctx context.Context, schema, table string) (models.TableInput, error) {
	cols, err := p.listColumns(ctx, schema, table)
	if err != nil {
		return models.TableInput{}, err
	}

	name := qualifiedName(schema, table)
	stats := p.columnStats(ctx, schema, table, cols)
	samples, err := p.sampleTable(ctx, schema, table)
	if err != nil {
		return models.TableInput{}, err
	}

	return models.NewTableInput(name, renderSchema(name, cols), renderStats(stats), samples, ""), nil
}

func (p *PostgresIntrospector) listColumns(ctx context.Context, schema, table string) ([]columnMeta, error) {
	const query = `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := p.pool.Query(ctx, query, schema, table)
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

// columnStats profiles each column. A column whose stats query fails (cast
// errors on exotic types, mostly) is skipped rather than failing the table.
func (p *PostgresIntrospector) columnStats(ctx context.Context, schema, table string, cols []columnMeta) []columnStats {
	tableRef := pgx.Identifier{schema, table}.Sanitize()

	var stats []columnStats
	for _, col := range cols {
		quotedCol := pgx.Identifier{col.Name}.Sanitize()
		query := fmt.Sprintf(`
			SELECT COUNT(*), COUNT(%s), COUNT(DISTINCT %s) FROM %s
		`, quotedCol, quotedCol, tableRef)

		var s columnStats
		s.Name = col.Name
		if err := p.pool.QueryRow(ctx, query).Scan(&s.RowCount, &s.NonNullCount, &s.DistinctCount); err != nil {
			p.logger.Warn("column stats query failed, skipping column",
				zap.String("table", table),
				zap.String("column", col.Name),
				zap.Error(err))
			continue
		}
		stats = append(stats, s)
	}
	return stats
}

func (p *PostgresIntrospector) sampleTable(ctx context.Context, schema, table string) (string, error) {
	tableRef := pgx.Identifier{schema, table}.Sanitize()
	query := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, tableRef, p.sampleRows)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var sampled [][]*string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read sample row: %w", err)
		}
		row := make([]*string, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			s := fmt.Sprintf("%v", v)
			row[i] = &s
		}
		sampled = append(sampled, row)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate sample rows: %w", err)
	}

	return renderSamples(columns, sampled), nil
}

var _ Introspector = (*PostgresIntrospector)(nil)
