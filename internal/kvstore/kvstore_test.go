package kvstore

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteProvider(t *testing.T) *GormProvider {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewGormProvider(db)
}

func runStoreContract(t *testing.T, provider Provider) {
	t.Run("missing key", func(t *testing.T) {
		store := provider.Profile("p-missing")
		value, ok, err := store.Get("tasks")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		store := provider.Profile("p-set")
		require.NoError(t, store.Set("tasks", `[{"id":"1"}]`))

		value, ok, err := store.Get("tasks")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"1"}]`, value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		store := provider.Profile("p-overwrite")
		require.NoError(t, store.Set("currentUser", "first"))
		require.NoError(t, store.Set("currentUser", "second"))

		value, ok, err := store.Get("currentUser")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", value)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		store := provider.Profile("p-remove")
		require.NoError(t, store.Set("currentUser", "someone"))
		require.NoError(t, store.Remove("currentUser"))
		require.NoError(t, store.Remove("currentUser"))

		_, ok, err := store.Get("currentUser")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("profiles are isolated", func(t *testing.T) {
		a := provider.Profile("p-a")
		b := provider.Profile("p-b")
		require.NoError(t, a.Set("users", "a-users"))

		_, ok, err := b.Get("users")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, b.Set("users", "b-users"))
		value, _, err := a.Get("users")
		require.NoError(t, err)
		assert.Equal(t, "a-users", value)
	})

	t.Run("same profile shares data", func(t *testing.T) {
		first := provider.Profile("p-shared")
		second := provider.Profile("p-shared")
		require.NoError(t, first.Set("tasks", "[]"))

		value, ok, err := second.Get("tasks")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", value)
	})
}

func TestMemoryProvider(t *testing.T) {
	runStoreContract(t, NewMemoryProvider())
}

func TestGormProvider(t *testing.T) {
	runStoreContract(t, newSQLiteProvider(t))
}

func TestGormStore_GetReturnsBackendError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `kv_entries`").
		WillReturnError(errors.New("connection refused"))

	store := NewGormProvider(db).Profile("p1")
	_, ok, err := store.Get("tasks")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
