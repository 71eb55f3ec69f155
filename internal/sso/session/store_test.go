package session

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client),
	}
}

func TestStateSecretSingleUse(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			secret := []byte("flow-secret")
			require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", secret, time.Minute))

			got, err := store.TakeStateSecret(ctx, "flow1", "prov1")
			require.NoError(t, err)
			require.Equal(t, secret, got)

			// Second take must fail: the secret is consumed.
			_, err = store.TakeStateSecret(ctx, "flow1", "prov1")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStateSecretScopedToPair(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", []byte("a"), time.Minute))
			require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov2", []byte("b"), time.Minute))

			_, err := store.TakeStateSecret(ctx, "flow2", "prov1")
			require.ErrorIs(t, err, ErrNotFound)

			got, err := store.TakeStateSecret(ctx, "flow1", "prov2")
			require.NoError(t, err)
			require.Equal(t, []byte("b"), got)
		})
	}
}

func TestStateSecretOverwrite(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", []byte("old"), time.Minute))
			require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", []byte("new"), time.Minute))

			got, err := store.TakeStateSecret(ctx, "flow1", "prov1")
			require.NoError(t, err)
			require.Equal(t, []byte("new"), got)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess := Session{
				ID:         "sess1",
				AccountID:  "acct1",
				ProviderID: "prov1",
				ExpiresAt:  time.Now().Add(time.Hour).UTC().Truncate(time.Second),
				CreatedAt:  time.Now().UTC().Truncate(time.Second),
			}
			require.NoError(t, store.CreateSession(ctx, sess))

			got, err := store.GetSession(ctx, "sess1")
			require.NoError(t, err)
			require.Equal(t, sess.AccountID, got.AccountID)
			require.Equal(t, sess.ProviderID, got.ProviderID)

			require.NoError(t, store.DeleteSession(ctx, "sess1"))
			_, err = store.GetSession(ctx, "sess1")
			require.ErrorIs(t, err, ErrNotFound)

			// Deleting again is a no-op.
			require.NoError(t, store.DeleteSession(ctx, "sess1"))
		})
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", []byte("s"), -time.Second))
	_, err := store.TakeStateSecret(ctx, "flow1", "prov1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.CreateSession(ctx, Session{
		ID:        "sess1",
		AccountID: "acct1",
		ExpiresAt: time.Now().Add(-time.Second),
	}))
	_, err = store.GetSession(ctx, "sess1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweepsAbandonedSecrets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Abandoned flows: secrets that expire without ever being taken.
	for i := 0; i < 2000; i++ {
		require.NoError(t, store.PutStateSecret(ctx, "flow"+strconv.Itoa(i), "prov1", []byte("s"), -time.Second))
	}
	require.NoError(t, store.PutStateSecret(ctx, "live", "prov1", []byte("s3cret"), time.Minute))

	store.mu.Lock()
	size := len(store.secrets)
	store.mu.Unlock()
	require.LessOrEqual(t, size, 1100)

	secret, err := store.TakeStateSecret(ctx, "live", "prov1")
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), secret)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)

	require.NoError(t, store.PutStateSecret(ctx, "flow1", "prov1", []byte("s"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.TakeStateSecret(ctx, "flow1", "prov1")
	require.ErrorIs(t, err, ErrNotFound)
}
