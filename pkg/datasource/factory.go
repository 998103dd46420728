package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
)

// New creates an introspector for the given driver ("postgres" or
// "sqlserver").
func New(ctx context.Context, driver, connStr string, sampleRows int, logger *zap.Logger) (Introspector, error) {
	switch driver {
	case "postgres", "postgresql":
		return NewPostgresIntrospector(ctx, connStr, sampleRows, logger)
	case "sqlserver", "mssql":
		return NewMSSQLIntrospector(ctx, connStr, sampleRows, logger)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedDriver, driver)
	}
}
