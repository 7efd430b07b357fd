package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewAppSessionStore(rdb, ttl), mr
}

func TestIssueAndGet(t *testing.T) {
	s, mr := newStore(t, time.Hour)
	ctx := context.Background()

	id, err := s.Issue(ctx, "user-1", "operator")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	as, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", as.UserID)
	assert.Equal(t, "operator", as.Role)
	assert.Equal(t, time.Hour, mr.TTL("app:sess:"+id))

	ok, err := mr.SIsMember("app:user_sessions:user-1", id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetUnknownOrExpired(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	id, err := s.Issue(ctx, "user-1", "viewer")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDeleteAndRevokeAll(t *testing.T) {
	s, _ := newStore(t, time.Hour)
	ctx := context.Background()

	a, err := s.Issue(ctx, "user-1", "admin")
	require.NoError(t, err)
	b, err := s.Issue(ctx, "user-1", "admin")
	require.NoError(t, err)
	other, err := s.Issue(ctx, "user-2", "viewer")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a))
	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = s.Get(ctx, b)
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForUser(ctx, "user-1"))
	_, err = s.Get(ctx, b)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = s.Get(ctx, other)
	assert.NoError(t, err)
}
