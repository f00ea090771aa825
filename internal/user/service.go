package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const msgEmailTaken = "user with this email already exists."

// CreateParams is the registration payload.
type CreateParams struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=128"`
	Name     string `json:"name" validate:"max=255"`
}

// UpdateParams carries the fields of a profile update. Nil means "not supplied".
type UpdateParams struct {
	Email    *string `json:"email" validate:"omitnil,required,email,max=255"`
	Password *string `json:"password" validate:"omitnil,required,min=5,max=128"`
	Name     *string `json:"name" validate:"omitnil,max=255"`
}

// Service owns user identity and credentials.
type Service struct {
	repo      *Repository
	hasher    PasswordHasher
	validator *validation.Validator

	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo *Repository, hasher PasswordHasher, validator *validation.Validator) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		validator: validator,
	}
}

// CreateUser registers a regular, active user.
func (s *Service) CreateUser(ctx context.Context, params CreateParams) (*User, error) {
	return s.create(ctx, params, false)
}

// CreateSuperuser registers an active user with staff and superuser flags.
func (s *Service) CreateSuperuser(ctx context.Context, params CreateParams) (*User, error) {
	return s.create(ctx, params, true)
}

func (s *Service) create(ctx context.Context, params CreateParams, superuser bool) (*User, error) {
	params.Email = NormalizeEmail(params.Email)
	params.Name = strings.TrimSpace(params.Name)

	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(ctx, params.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, validation.Field("email", msgEmailTaken)
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, validation.Field("email", msgEmailTaken)
		}
		return nil, err
	}

	return u, nil
}

// Authenticate returns the active user owning email and password. Every
// mismatch yields ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Spend the same hashing time as a real check.
			s.hasher.Verify(s.dummy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(u.PasswordHash, password) || !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLogin = &now
	}

	return u, nil
}

// GetByID loads a user.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update changes u's profile. A partial update touches only supplied fields;
// a full update requires email and password. A new password is re-hashed.
func (s *Service) Update(ctx context.Context, u *User, params UpdateParams, partial bool) (*User, error) {
	errs := validation.New()
	if !partial {
		if params.Email == nil {
			errs.Add("email", validation.MsgRequired)
		}
		if params.Password == nil {
			errs.Add("password", validation.MsgRequired)
		}
	}

	if params.Email != nil {
		email := NormalizeEmail(*params.Email)
		params.Email = &email
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}

	if err := s.validator.Validate(params); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		errs.Merge(fieldErrs)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	updated := *u
	if params.Email != nil && *params.Email != u.Email {
		taken, err := s.repo.EmailExists(ctx, *params.Email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, validation.Field("email", msgEmailTaken)
		}
		updated.Email = *params.Email
	}
	if params.Name != nil {
		updated.Name = *params.Name
	}
	if params.Password != nil {
		passwordHash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = passwordHash
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, validation.Field("email", msgEmailTaken)
		}
		return nil, err
	}

	return &updated, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("timing-equalizer")
	})
	return s.dummyHash
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
