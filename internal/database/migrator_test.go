package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames_Sorted(t *testing.T) {
	m := &Migrator{files: fstest.MapFS{
		"migrations/002_b.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/010_c.sql": {Data: []byte("SELECT 10;")},
	}}

	names, err := m.migrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "010_c.sql"}, names)
}

func TestEmbeddedSchema(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/001_customization_requests.sql")
	require.NoError(t, err)
	schema := string(raw)

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS customization_requests",
		"total_cost = unit_cost * quantity",
		"char_length(admin_notes) <= 1000",
		"ON customization_requests (user_id, payment_reference)",
		"CREATE TRIGGER customization_requests_status_guard",
	} {
		assert.True(t, strings.Contains(schema, want), want)
	}
}
