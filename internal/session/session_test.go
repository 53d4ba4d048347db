package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/colocetudiant/internal/model"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func alice() model.User {
	p := model.DefaultProfile()
	return model.User{ID: "u1", Email: "alice@x.fr", Username: "alice", Role: model.RoleUser, Profile: &p}
}

func stores(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return map[string]Store{"memory": NewMemoryStore(), "redis": NewRedisStore(rdb)}
}

func TestLoginRestoreLogout(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := &fakeUsers{users: map[string]model.User{"u1": alice()}}
			m := NewManager(store, users, time.Hour, nil)

			sid, st, err := m.Login(ctx, alice())
			require.NoError(t, err)
			require.NotEmpty(t, sid)
			assert.True(t, st.IsAuthenticated)

			// a new request with the same slot id sees the same user
			restored, err := m.Restore(ctx, sid)
			require.NoError(t, err)
			assert.True(t, restored.IsAuthenticated)
			assert.Equal(t, "alice", restored.User.Username)

			require.NoError(t, m.Logout(ctx, sid))
			after, err := m.Restore(ctx, sid)
			require.NoError(t, err)
			assert.False(t, after.IsAuthenticated)
			assert.Nil(t, after.User)
		})
	}
}

func TestRestoreUnknownSlot(t *testing.T) {
	m := NewManager(NewMemoryStore(), &fakeUsers{}, time.Hour, nil)
	st, err := m.Restore(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, Anonymous(), st)

	st, err = m.Restore(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Anonymous(), st)
}

func TestRestoreRevalidatesUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := &fakeUsers{users: map[string]model.User{"u1": alice()}}
	m := NewManager(store, users, time.Hour, nil)

	sid, _, err := m.Login(ctx, alice())
	require.NoError(t, err)

	promoted := alice()
	promoted.Role = model.RoleAdmin
	users.users["u1"] = promoted
	st, err := m.Restore(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, st.User.Role)

	delete(users.users, "u1")
	st, err = m.Restore(ctx, sid)
	require.NoError(t, err)
	assert.False(t, st.IsAuthenticated)
	_, ok, _ := store.Get(ctx, sid)
	assert.False(t, ok, "stale slot must be cleared")
}

func TestRestorePropagatesLookupError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	users := &fakeUsers{users: map[string]model.User{"u1": alice()}}
	m := NewManager(NewMemoryStore(), users, time.Hour, nil)
	sid, _, err := m.Login(ctx, alice())
	require.NoError(t, err)

	users.err = boom
	_, err = m.Restore(ctx, sid)
	assert.ErrorIs(t, err, boom)
}

func TestRestoreDropsUnreadableSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "bad", []byte("{not json"), time.Hour))
	m := NewManager(store, &fakeUsers{}, time.Hour, nil)

	st, err := m.Restore(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, st.IsAuthenticated)
	_, ok, _ := store.Get(ctx, "bad")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Set(ctx, "a", []byte("x"), time.Minute))

	_, ok, _ := s.Get(ctx, "a")
	assert.True(t, ok)
	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStore(rdb)
	require.NoError(t, s.Set(context.Background(), "sid1", []byte(`{"id":"u1"}`), time.Hour))
	assert.True(t, mr.Exists("colocetudiant_session:sid1"))
	assert.Equal(t, time.Hour, mr.TTL("colocetudiant_session:sid1"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := s.Get(context.Background(), "sid1")
	require.NoError(t, err)
	assert.False(t, ok)
}
