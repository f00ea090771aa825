package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/recipe-api/internal/database/dbtest"
	"github.com/redmonkez12/recipe-api/internal/user"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

var testArgon2 = user.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type fixture struct {
	db      *bun.DB
	users   *user.Service
	tokens  *Repository
	cache   *memCache
	paseto  *PasetoService
	service *Service
}

func newFixture(t *testing.T, duration time.Duration) *fixture {
	t.Helper()

	db := dbtest.New(t)
	users := user.NewService(user.NewRepository(db), user.NewArgon2Hasher(testArgon2), validation.NewValidator())

	ps, err := NewPasetoService(testKey, duration)
	require.NoError(t, err)

	tokens := NewRepository(db)
	cache := newMemCache()

	return &fixture{
		db:      db,
		users:   users,
		tokens:  tokens,
		cache:   cache,
		paseto:  ps,
		service: NewService(users, tokens, cache, ps),
	}
}

func (f *fixture) createUser(t *testing.T, email, password string) *user.User {
	t.Helper()

	u, err := f.users.CreateUser(context.Background(), user.CreateParams{
		Email:    email,
		Password: password,
		Name:     "Test Name",
	})
	require.NoError(t, err)
	return u
}

// memCache is an in-process TokenCache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]int64
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]int64)}
}

func (c *memCache) Get(_ context.Context, key string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	return id, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = userID
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) has(key string) bool {
	_, ok, _ := c.Get(context.Background(), key)
	return ok
}
