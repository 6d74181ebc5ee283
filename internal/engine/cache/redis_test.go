package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db, "", 3600)

		entry := NewCacheEntry("k1", "https://openlibrary.org/x.json", jsoniter.RawMessage(`{"a":1}`), 3600)
		encoded, err := json.Marshal(entry)
		require.NoError(t, err)
		mock.ExpectGet("wantlist:k1").SetVal(string(encoded))

		got, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got.Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db, "", 3600)
		mock.ExpectGet("wantlist:k2").RedisNil()

		_, err := store.Get(ctx, "k2")
		assert.ErrorIs(t, err, ErrCacheNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("server error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisStore(db, "shelf:", 3600)
		mock.ExpectGet("shelf:k3").SetErr(errors.New("LOADING"))

		_, err := store.Get(ctx, "k3")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCacheNotFound)
	})

	t.Run("empty key", func(t *testing.T) {
		db, _ := redismock.NewClientMock()
		_, err := NewRedisStore(db, "", 60).Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidCacheKey)
	})
}

func TestRedisStore_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 3600)

	mock.Regexp().ExpectSet("wantlist:k1", `^\{.*\}$`, time.Hour).SetVal("OK")

	require.NoError(t, store.Set(context.Background(), "k1", "src", jsoniter.RawMessage(`{"a":1}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ClearAndStats(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", 3600)

	mock.ExpectScan(0, "wantlist:*", redisScanCount).SetVal([]string{"wantlist:a", "wantlist:b"}, 7)
	mock.ExpectScan(7, "wantlist:*", redisScanCount).SetVal([]string{"wantlist:c"}, 0)
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, BackendRedis, stats.Backend)

	mock.ExpectScan(0, "wantlist:*", redisScanCount).SetVal([]string{"wantlist:a", "wantlist:b"}, 0)
	mock.ExpectDel("wantlist:a", "wantlist:b").SetVal(2)
	require.NoError(t, store.Clear(ctx))

	mock.ExpectDel("wantlist:a").SetVal(1)
	require.NoError(t, store.Delete(ctx, "a"))

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, store.IsEnabled())
}
