package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/gateway"
)

func TestVersionsSorted(t *testing.T) {
	versions, err := Versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_init.sql", versions[0])
	assert.IsNonDecreasing(t, versions)
}

func TestInitMigrationCoversGatewaySchema(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	sql := string(body)

	for table, columns := range gateway.Schema {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
		for _, column := range columns {
			assert.Contains(t, sql, column, "%s.%s", table, column)
		}
	}
}
