package cartstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/repairpos/pkg/db/dbtest"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/redis"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "pos-cart")
	require.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, store.Save(ctx, "pos-cart", []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, "pos-cart", []byte(`{"v":2}`)))

	raw, err := store.Load(ctx, "pos-cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(raw))

	require.NoError(t, store.Delete(ctx, "pos-cart"))
	_, err = store.Load(ctx, "pos-cart")
	require.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client := redis.NewFromRaw(raw)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client))

	require.NoError(t, NewRedisStore(client).Save(context.Background(), "front", []byte("x")))
	assert.True(t, mr.Exists("pos:cart:front"))
	assert.Equal(t, 0, int(mr.TTL("pos:cart:front")))
}

func TestDBStore(t *testing.T) {
	client := dbtest.NewClient(t)
	exerciseStore(t, NewDBStore(client.DB()))
}

func TestDBStoreUpsertKeepsSingleRow(t *testing.T) {
	client := dbtest.NewClient(t)
	store := NewDBStore(client.DB())
	ctx := context.Background()

	raw, err := Encode(sampleState())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "pos-cart", raw))
	require.NoError(t, store.Save(ctx, "pos-cart", raw))

	var count int64
	require.NoError(t, client.DB().Model(&models.CartSlot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var slot models.CartSlot
	require.NoError(t, client.DB().First(&slot).Error)
	assert.Equal(t, SchemaVersion, slot.SchemaVersion)
}
