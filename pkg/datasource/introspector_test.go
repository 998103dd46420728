package datasource

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
)

func TestRenderSchema(t *testing.T) {
	cols := []columnMeta{
		{Name: "id", DataType: "integer", IsNullable: false},
		{Name: "email", DataType: "text", IsNullable: true},
	}

	schema := renderSchema("public.users", cols)

	assert.Contains(t, schema, "CREATE TABLE public.users (")
	assert.Contains(t, schema, "id integer NOT NULL,")
	assert.Contains(t, schema, "email text\n")
	assert.True(t, strings.HasSuffix(schema, ")"))
}

func TestRenderStats(t *testing.T) {
	stats := []columnStats{
		{Name: "id", RowCount: 100, NonNullCount: 100, DistinctCount: 100},
		{Name: "email", RowCount: 100, NonNullCount: 75, DistinctCount: 60},
		{Name: "empty", RowCount: 0, NonNullCount: 0, DistinctCount: 0},
	}

	rendered := renderStats(stats)
	lines := strings.Split(rendered, "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "id: 0.0% null, 100 distinct of 100 rows", lines[0])
	assert.Equal(t, "email: 25.0% null, 60 distinct of 100 rows", lines[1])
	assert.Equal(t, "empty: 0.0% null, 0 distinct of 0 rows", lines[2])
}

func TestRenderSamples(t *testing.T) {
	v1, v2 := "1", "alice"
	long := strings.Repeat("x", 500)

	rendered := renderSamples([]string{"id", "name"}, [][]*string{
		{&v1, &v2},
		{&v1, nil},
		{&long, &v2},
	})
	lines := strings.Split(rendered, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "id, name", lines[0])
	assert.Equal(t, "1, alice", lines[1])
	assert.Equal(t, "1, NULL", lines[2])
	assert.Contains(t, lines[3], "...", "oversized cells are truncated")
	assert.Less(t, len(lines[3]), 200)
}

func TestRenderSamples_NoRows(t *testing.T) {
	assert.Empty(t, renderSamples([]string{"id"}, nil))
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "dbo.users", qualifiedName("dbo", "users"))
	assert.Equal(t, "users", qualifiedName("", "users"))
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "[users]", quoteName("users"))
	assert.Equal(t, "[we]]ird]", quoteName("we]ird"))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "", 0, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedDriver))
}
