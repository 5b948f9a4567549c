package drafts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)
	return store, mr
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	redisStore, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			key := Key{Session: "sess-1", Draft: NewDraftKey}

			_, err := store.Load(ctx, key)
			require.ErrorIs(t, err, ErrNotFound)

			c := products.NewCreateComposer(catalog.Default())
			require.NoError(t, c.AddColor("Black"))
			_, err = c.AddCustomColor("Teal", "#008080")
			require.NoError(t, err)
			require.NoError(t, store.Save(ctx, key, c))

			loaded, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.Equal(t, c.Draft, loaded.Draft)
			require.Equal(t, c.SubmissionKey, loaded.SubmissionKey)
			_, ok := loaded.Catalog.Color("Teal")
			require.True(t, ok, "session catalog survives the round trip")

			loaded.Draft.Colors = append(loaded.Draft.Colors, "Navy")
			again, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.NotContains(t, again.Draft.Colors, "Navy")

			require.NoError(t, store.Delete(ctx, key))
			_, err = store.Load(ctx, key)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreAcquireIsExclusive(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			key := Key{Session: "sess-1", Draft: "p-1"}

			release, err := store.Acquire(ctx, key)
			require.NoError(t, err)

			_, err = store.Acquire(ctx, key)
			require.ErrorIs(t, err, ErrBusy)

			other, err := store.Acquire(ctx, Key{Session: "sess-2", Draft: "p-1"})
			require.NoError(t, err)
			other()

			release()
			release()

			again, err := store.Acquire(ctx, key)
			require.NoError(t, err)
			again()
		})
	}
}

func TestStoreDeleteSessionDropsOnlyThatSession(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			c := products.NewCreateComposer(catalog.Default())

			var owned []Key
			for i := 0; i < 100; i++ {
				key := Key{Session: "sess-1", Draft: fmt.Sprintf("65f1c0a2b3d4e5f6a7b8c%03d", i)}
				require.NoError(t, store.Save(ctx, key, c))
				owned = append(owned, key)
			}
			other := Key{Session: "sess-2", Draft: NewDraftKey}
			require.NoError(t, store.Save(ctx, other, c))
			require.NoError(t, store.Delete(ctx, owned[0]))

			require.NoError(t, store.DeleteSession(ctx, "sess-1"))
			for _, key := range owned {
				_, err := store.Load(ctx, key)
				require.ErrorIs(t, err, ErrNotFound)
			}
			_, err := store.Load(ctx, other)
			require.NoError(t, err)

			require.NoError(t, store.DeleteSession(ctx, "sess-unknown"))
		})
	}
}

func TestRedisStoreOptions(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err := NewRedisStore(client, time.Hour, WithPrefix("staging:draft:"), WithLockTTL(10*time.Second))
	require.NoError(t, err)

	ctx := context.Background()
	key := Key{Session: "s", Draft: NewDraftKey}
	require.NoError(t, store.Save(ctx, key, products.NewCreateComposer(catalog.Default())))
	require.True(t, mr.Exists("staging:draft:s:new"))
	require.True(t, mr.Exists("staging:draft:{s}:drafts"))

	_, err = store.Acquire(ctx, key)
	require.NoError(t, err)
	mr.FastForward(11 * time.Second)
	release, err := store.Acquire(ctx, key)
	require.NoError(t, err, "abandoned locks expire")
	release()
}

func TestStoreDoesNotPersistSubmittingPhase(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	key := Key{Session: "s", Draft: NewDraftKey}

	c := products.NewCreateComposer(catalog.Default())
	c.Phase = products.PhaseSubmitting
	require.NoError(t, store.Save(ctx, key, c))

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, products.PhaseEditing, loaded.Phase)
}

func TestMemoryStoreExpiresDrafts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	key := Key{Session: "s", Draft: NewDraftKey}
	require.NoError(t, store.Save(ctx, key, products.NewCreateComposer(catalog.Default())))

	now = now.Add(2 * time.Minute)
	_, err := store.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpiresDrafts(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)
	ctx := context.Background()
	key := Key{Session: "s", Draft: NewDraftKey}
	require.NoError(t, store.Save(ctx, key, products.NewCreateComposer(catalog.Default())))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKeyValidate(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStore(0).Load(context.Background(), Key{Session: "", Draft: "new"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
