/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/datastore/sqlite"
	"github.com/suparena/recordstore/datastore/testmodels"
	"github.com/suparena/recordstore/entity"
	"github.com/suparena/recordstore/storagemodels"
)

// exerciseRatingSystems runs the repository lifecycle against a real client
func exerciseRatingSystems(t *testing.T, client datastore.Client, namespace, set string) {
	t.Helper()
	ctx := context.Background()
	repo := recordstore.NewRepository(client, namespace, set,
		recordstore.WithLogger[*testmodels.RatingSystem](zaptest.NewLogger(t)))

	t.Run("SaveAndGet", func(t *testing.T) {
		rs := testmodels.NewRatingSystem(sid("TTOakville"))
		rs.Name = testmodels.String("Oakville Table Tennis Ranking System (test)")
		rs.Description = testmodels.String("Test rating system for Oakville Table Tennis Club")
		require.NoError(t, repo.Save(ctx, rs))

		got, found, err := repo.Get(ctx, sid("TTOakville"))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, *rs.Name, *got.Name)
		assert.Equal(t, *rs.Description, *got.Description)
		assert.Nil(t, got.SiteURL)
		require.NotNil(t, got.CreatedAt, "createdAt default applied on save")
		assert.Equal(t, int64(0), *got.Players)
	})

	t.Run("GetOrCreateAndUpdate", func(t *testing.T) {
		created, err := repo.GetOrCreate(ctx, storagemodels.IntID(42), entity.Attributes{
			"name":    "Numeric",
			"siteURL": "https://example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, created.CreatedAt)

		require.NoError(t, repo.Update(ctx, storagemodels.IntID(42), entity.Attributes{"players": 12}))

		got, found, err := repo.Get(ctx, storagemodels.IntID(42))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, storagemodels.IntID(42), got.EntityID())
		assert.Equal(t, int64(12), *got.Players)
		assert.Equal(t, "https://example.com", *got.SiteURL)
		assert.Equal(t, created.CreatedAt.String(), got.CreatedAt.String())
	})

	t.Run("ScanAndBatch", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rs := testmodels.NewRatingSystem(sid(fmt.Sprintf("club-%d", i)))
			rs.Name = testmodels.String(fmt.Sprintf("Club %d", i))
			rs.Players = testmodels.Int64(int64(i * 10))
			require.NoError(t, repo.Save(ctx, rs))
		}

		all, err := repo.GetAll(ctx, storagemodels.NewQuery().WithStreamOptions(storagemodels.WithPageSize(2)))
		require.NoError(t, err)
		assert.Len(t, all, 7)

		busy, err := repo.GetAll(ctx, storagemodels.NewQuery().Where("Players", storagemodels.OpGreaterOrEqual, 20))
		require.NoError(t, err)
		assert.Len(t, busy, 3)

		clubs, err := repo.GetAll(ctx, storagemodels.NewQuery().WhereBeginsWith("Name", "Club"))
		require.NoError(t, err)
		assert.Len(t, clubs, 5)

		got, err := repo.GetMany(ctx, []storagemodels.ID{sid("club-0"), sid("ghost"), sid("club-4")})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		require.NoError(t, repo.DeleteMany(ctx, []storagemodels.ID{sid("club-0"), sid("club-1"), sid("ghost")}))
		all, err = repo.GetAll(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, sid("TTOakville")))
		require.NoError(t, repo.Delete(ctx, sid("TTOakville")))

		_, found, err := repo.Get(ctx, sid("TTOakville"))
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRepositoryBackends(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		exerciseRatingSystems(t, mock.New(), "test", "ratings")
	})

	t.Run("SQLite", func(t *testing.T) {
		client, err := sqlite.New(":memory:", sqlite.WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })

		exerciseRatingSystems(t, client, "test", "ratings")
	})
}
