package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FirstMigration(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_records", ident)

	_, err = src.Next(first)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMigrationFiles_CoverEveryTable(t *testing.T) {
	up, err := files.ReadFile("sql/000001_create_records.up.sql")
	require.NoError(t, err)
	down, err := files.ReadFile("sql/000001_create_records.down.sql")
	require.NoError(t, err)

	for _, table := range []string{"dunning_letters", "prescriptions", "treatments", "audit_logs"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
		assert.Contains(t, string(down), "DROP TABLE IF EXISTS "+table)
		if table != "audit_logs" {
			assert.True(t, strings.Contains(string(up), "ON "+table+" (tenant_id, created_on, id)"), table)
		}
	}
}
