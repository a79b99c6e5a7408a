package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitpay-api/internal/clients"
	"splitpay-api/internal/domain"
)

type countingProfileStore struct {
	profiles map[string]domain.Profile
	asked    [][]string
	err      error
}

func (s *countingProfileStore) ProfilesByUUIDs(_ context.Context, uuids []string) ([]domain.Profile, error) {
	s.asked = append(s.asked, uuids)
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Profile
	for _, u := range uuids {
		if p, ok := s.profiles[u]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newCachedDirectory(t *testing.T) (*UserDirectory, *countingProfileStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &countingProfileStore{profiles: map[string]domain.Profile{"A": alice, "B": bob}}
	return NewUserDirectory(store, clients.WrapRedis(rdb, "test_"), time.Minute), store, mr
}

func TestUserDirectory_ReadThrough(t *testing.T) {
	dir, store, mr := newCachedDirectory(t)
	ctx := context.Background()

	got, err := dir.ResolveMany(ctx, []string{"A", "B", "X"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Alice", got["A"].Name)
	require.Len(t, store.asked, 1)
	assert.True(t, mr.Exists("test_profile:A"))

	mr.FastForward(30 * time.Second)
	got, err = dir.ResolveMany(ctx, []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", got["B"].Name)
	assert.Len(t, store.asked, 1, "second lookup served from cache")

	dir.Forget(ctx, "A")
	assert.False(t, mr.Exists("test_profile:A"))

	_, err = dir.ResolveMany(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, store.asked, 2)
	assert.Equal(t, []string{"A"}, store.asked[1])
}

func TestUserDirectory_TTLExpiry(t *testing.T) {
	dir, store, mr := newCachedDirectory(t)
	ctx := context.Background()

	_, err := dir.Resolve(ctx, "A")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = dir.Resolve(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, store.asked, 2)
}

func TestUserDirectory_CacheDownFallsBackToStore(t *testing.T) {
	dir, store, mr := newCachedDirectory(t)
	mr.Close()

	p, err := dir.Resolve(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)
	assert.Len(t, store.asked, 1)
}

func TestUserDirectory_NoCache(t *testing.T) {
	store := &countingProfileStore{profiles: map[string]domain.Profile{"A": alice}}
	dir := NewUserDirectory(store, nil, 0)

	_, err := dir.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "No user found with ID: missing")

	store.err = errors.New("db down")
	_, err = dir.ResolveMany(context.Background(), []string{"A"})
	assert.EqualError(t, err, "db down")
}
