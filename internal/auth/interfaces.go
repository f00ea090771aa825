package auth

import (
	"context"
	"time"
)

// Token is the persisted token of one user.
type Token struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}

// TokenStore persists at most one token per user.
type TokenStore interface {
	GetByUserID(ctx context.Context, userID int64) (*Token, error)
	GetByKey(ctx context.Context, key string) (*Token, error)
	// Issue keeps the first writer's token when logins race.
	Issue(ctx context.Context, userID int64, previous, key string) (*Token, error)
}

// TokenCache maps a token to its user id so authenticated requests skip the
// token table. Implementations include RedisTokenCache and NopCache.
type TokenCache interface {
	Get(ctx context.Context, key string) (userID int64, ok bool, err error)
	Set(ctx context.Context, key string, userID int64) error
	Delete(ctx context.Context, key string) error
}
