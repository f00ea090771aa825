package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/recipe-api/internal/database"
)

var ErrTokenNotFound = errors.New("token not found")

// Repository handles token persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID returns the token issued to userID.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Token, error) {
	dbToken := new(database.AuthToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token by user: %w", err)
	}

	return mapDBTokenToModel(dbToken), nil
}

// GetByKey looks a token up by its value.
func (r *Repository) GetByKey(ctx context.Context, key string) (*Token, error) {
	dbToken := new(database.AuthToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Where("key = ?", key).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return mapDBTokenToModel(dbToken), nil
}

// Issue stores key as userID's token unless another token already holds
// the slot. previous, when set, is the stale token being replaced; it is only
// dropped if it is still the stored one. The token stored after the call is
// returned, which is someone else's key when a concurrent login won.
func (r *Repository) Issue(ctx context.Context, userID int64, previous, key string) (*Token, error) {
	dbToken := &database.AuthToken{
		Key:       key,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	stored := new(database.AuthToken)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if previous != "" {
			if _, err := tx.NewDelete().
				Model((*database.AuthToken)(nil)).
				Where("user_id = ?", userID).
				Where("key = ?", previous).
				Exec(ctx); err != nil {
				return err
			}
		}

		if _, err := tx.NewInsert().
			Model(dbToken).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		return tx.NewSelect().
			Model(stored).
			Where("user_id = ?", userID).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return mapDBTokenToModel(stored), nil
}

func mapDBTokenToModel(dbt *database.AuthToken) *Token {
	return &Token{
		Key:       dbt.Key,
		UserID:    dbt.UserID,
		CreatedAt: dbt.CreatedAt,
	}
}
