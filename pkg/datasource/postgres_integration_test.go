package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/testhelpers"
)

func TestPostgresIntrospector_Integration(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	_, err := testDB.Pool.Exec(ctx, `
		DROP TABLE IF EXISTS intro_orders;
		DROP TABLE IF EXISTS intro_customers;
		CREATE TABLE intro_customers (
			customer_id int PRIMARY KEY,
			email text
		);
		CREATE TABLE intro_orders (
			order_id int PRIMARY KEY,
			customer_id int NOT NULL,
			total numeric
		);
		INSERT INTO intro_customers VALUES (1, 'a@example.com'), (2, NULL);
		INSERT INTO intro_orders VALUES (10, 1, 99.50), (11, 2, NULL);
	`)
	require.NoError(t, err)

	intro, err := NewPostgresIntrospector(ctx, testDB.ConnStr, 5, zap.NewNop())
	require.NoError(t, err)
	defer intro.Close()

	inputs, err := intro.Introspect(ctx)
	require.NoError(t, err)

	byName := make(map[string]int)
	for i, input := range inputs {
		byName[input.Name] = i
		assert.NotEmpty(t, input.ID)
	}
	require.Contains(t, byName, "public.intro_customers")
	require.Contains(t, byName, "public.intro_orders")

	customers := inputs[byName["public.intro_customers"]]
	assert.Contains(t, customers.Schema, "CREATE TABLE public.intro_customers")
	assert.Contains(t, customers.Schema, "customer_id integer NOT NULL")
	assert.Contains(t, customers.Stats, "email: 50.0% null")
	assert.Contains(t, customers.Samples, "a@example.com")
	assert.Contains(t, customers.Samples, "NULL")

	orders := inputs[byName["public.intro_orders"]]
	assert.Contains(t, orders.Schema, "customer_id integer NOT NULL")
	assert.Contains(t, orders.Samples, "99.5")
}
