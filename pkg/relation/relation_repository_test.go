package relation

import (
	"context"
	"testing"

	"foodgram-backend/entities"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Recipe{},
		&entities.Favorite{},
		&entities.Subscription{},
	))
	return db
}

func newFavoriteRepository(db *gorm.DB) Repository[entities.Favorite] {
	return NewRepository(db, "user_id", "recipe_id", func(subject, target uint) *entities.Favorite {
		return &entities.Favorite{UserID: subject, RecipeID: target}
	})
}

func TestAddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := newFavoriteRepository(db)
	ctx := context.Background()

	created, err := repo.Add(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, created, "first add must create the record")

	created, err = repo.Add(ctx, 1, 42)
	require.NoError(t, err)
	assert.False(t, created, "second add must report a conflict")

	var count int64
	require.NoError(t, db.Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", 1, 42).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one record per pair")
}

func TestAddDistinguishesPairs(t *testing.T) {
	db := newTestDB(t)
	repo := newFavoriteRepository(db)
	ctx := context.Background()

	for _, pair := range [][2]uint{{1, 42}, {1, 43}, {2, 42}} {
		created, err := repo.Add(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, created)
	}

	var count int64
	require.NoError(t, db.Model(&entities.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRemove(t *testing.T) {
	db := newTestDB(t)
	repo := newFavoriteRepository(db)
	ctx := context.Background()

	_, err := repo.Add(ctx, 1, 42)
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, 1, 42)
	require.NoError(t, err)
	assert.False(t, removed, "removing a missing record reports a conflict")

	var count int64
	require.NoError(t, db.Model(&entities.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRemoveMissingDeletesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := newFavoriteRepository(db)
	ctx := context.Background()

	_, err := repo.Add(ctx, 1, 42)
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, removed)

	var count int64
	require.NoError(t, db.Model(&entities.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "other pairs must stay untouched")
}

func TestExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, "user_id", "author_id", func(subject, target uint) *entities.Subscription {
		return &entities.Subscription{UserID: subject, AuthorID: target}
	})
	ctx := context.Background()

	exists, err := repo.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Add(ctx, 1, 2)
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, exists)
}
