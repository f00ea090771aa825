package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/user"
)

// ErrInvalidCredentials is returned by Obtain for any email/password mismatch.
var ErrInvalidCredentials = user.ErrInvalidCredentials

// Service issues tokens and resolves them back to users.
type Service struct {
	users  *user.Service
	tokens TokenStore
	cache  TokenCache
	paseto *PasetoService
}

func NewService(users *user.Service, tokens TokenStore, cache TokenCache, pasetoService *PasetoService) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		users:  users,
		tokens: tokens,
		cache:  cache,
		paseto: pasetoService,
	}
}

// Obtain checks the credentials and returns the user's token. A stored token
// that still verifies is returned as is (reused is true); otherwise a new one
// replaces it.
func (s *Service) Obtain(ctx context.Context, email, password string) (key string, reused bool, err error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", false, err
	}

	existing, err := s.tokens.GetByUserID(ctx, u.ID)
	switch {
	case err == nil:
		if claims, verr := s.paseto.VerifyToken(existing.Key); verr == nil && claims.UserID == u.ID {
			return existing.Key, true, nil
		}
	case !errors.Is(err, ErrTokenNotFound):
		return "", false, err
	}

	key, err = s.paseto.CreateToken(u.ID)
	if err != nil {
		return "", false, fmt.Errorf("failed to create token: %w", err)
	}

	var previous string
	if existing != nil {
		previous = existing.Key
	}

	stored, err := s.tokens.Issue(ctx, u.ID, previous, key)
	if err != nil {
		return "", false, err
	}

	if previous != "" && stored.Key != previous {
		if err := s.cache.Delete(ctx, previous); err != nil {
			logging.GetLoggerFromContext(ctx).Warn("failed to evict replaced token", "user_id", u.ID, "error", err)
		}
	}

	// A concurrent login stored its token first; hand that one out.
	return stored.Key, stored.Key != key, nil
}

// Authenticate resolves key to an active user. Unknown, replaced or expired
// tokens and inactive users all fail with ErrInvalidToken or ErrExpiredToken.
func (s *Service) Authenticate(ctx context.Context, key string) (*user.User, error) {
	claims, err := s.paseto.VerifyToken(key)
	if err != nil {
		return nil, err
	}

	userID, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if userID != claims.UserID {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}

	return u, nil
}

// lookup finds the owner of a stored token, through the cache when possible.
func (s *Service) lookup(ctx context.Context, key string) (int64, error) {
	logger := logging.GetLoggerFromContext(ctx)

	userID, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("token cache read failed", "error", err)
	} else if ok {
		return userID, nil
	}

	stored, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}

	if err := s.cache.Set(ctx, key, stored.UserID); err != nil {
		logger.Warn("token cache write failed", "error", err)
	}

	return stored.UserID, nil
}
