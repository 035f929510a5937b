package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.Len(t, all, 2)

	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "create_posts", all[0].Name)
	assert.Equal(t, "000002_create_post_likes", all[1].String())

	for _, m := range all {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
	}
}

func TestGetMigrationByVersion(t *testing.T) {
	m := GetMigrationByVersion(2)
	require.NotNil(t, m)
	assert.Equal(t, "create_post_likes", m.Name)

	assert.Nil(t, GetMigrationByVersion(999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestAppliedVersions_MissingTable(t *testing.T) {
	db := openSQLite(t)

	versions, err := appliedVersions(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestRollbackMigration_NotApplied(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))

	err := RollbackMigration(context.Background(), db, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")

	err = RollbackMigration(context.Background(), db, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
