package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/recipe-api/internal/database/dbtest"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := dbtest.New(t)
	return NewService(NewRepository(db), NewArgon2Hasher(testArgon2), validation.NewValidator())
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"test1@EXAMPLE.com", "test1@example.com"},
		{"Test2@Example.com", "Test2@example.com"},
		{"TEST3@EXAMPLE.COM", "TEST3@example.com"},
		{"test4@example.COM", "test4@example.com"},
		{"  spaced@Example.com ", "spaced@example.com"},
		{"odd@name@Example.COM", "odd@name@example.com"},
		{"no-at-sign", "no-at-sign"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestService_CreateUser(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateParams{Email: "test@EXAMPLE.com", Password: "testpass123", Name: "Test"})
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "test@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.NotEqual(t, "testpass123", u.PasswordHash)
	assert.True(t, s.hasher.Verify(u.PasswordHash, "testpass123"))
}

func TestService_CreateUserValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateParams
		field  string
	}{
		{"missing email", CreateParams{Email: "", Password: "testpass123"}, "email"},
		{"malformed email", CreateParams{Email: "not-an-email", Password: "testpass123"}, "email"},
		{"short password", CreateParams{Email: "short@example.com", Password: "pw"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateUser(ctx, tt.params)
			assert.True(t, fieldErrors(t, err).Has(tt.field))
		})
	}

	// Nothing was stored.
	_, err := s.repo.GetByEmail(ctx, "short@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CreateUserDuplicateEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, CreateParams{Email: "dup@example.com", Password: "testpass123"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, CreateParams{Email: "dup@EXAMPLE.COM", Password: "other123"})
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{msgEmailTaken}, errs["email"])
}

func TestService_CreateSuperuser(t *testing.T) {
	s := newTestService(t)

	u, err := s.CreateSuperuser(context.Background(), CreateParams{Email: "admin@example.com", Password: "test123"})
	require.NoError(t, err)

	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
}

func TestService_Authenticate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, CreateParams{Email: "login@example.com", Password: "testpass123"})
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "login@EXAMPLE.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotNil(t, u.LastLogin)

	_, err = s.Authenticate(ctx, "login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "missing@example.com", "testpass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_UpdatePartial(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateParams{Email: "me@example.com", Password: "testpass123", Name: "Old"})
	require.NoError(t, err)

	name, password := "Updated name", "newpassword123"
	updated, err := s.Update(ctx, u, UpdateParams{Name: &name, Password: &password}, true)
	require.NoError(t, err)

	assert.Equal(t, "Updated name", updated.Name)
	assert.Equal(t, "me@example.com", updated.Email)
	assert.True(t, s.hasher.Verify(updated.PasswordHash, "newpassword123"))

	reloaded, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated name", reloaded.Name)
	assert.True(t, s.hasher.Verify(reloaded.PasswordHash, "newpassword123"))
}

func TestService_UpdateFullRequiresCredentials(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateParams{Email: "me@example.com", Password: "testpass123"})
	require.NoError(t, err)

	name := "Only name"
	_, err = s.Update(ctx, u, UpdateParams{Name: &name}, false)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{validation.MsgRequired}, errs["email"])
	assert.Equal(t, []string{validation.MsgRequired}, errs["password"])
}

func TestService_UpdateEmailTaken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, CreateParams{Email: "taken@example.com", Password: "testpass123"})
	require.NoError(t, err)
	u, err := s.CreateUser(ctx, CreateParams{Email: "me@example.com", Password: "testpass123"})
	require.NoError(t, err)

	email := "taken@example.com"
	_, err = s.Update(ctx, u, UpdateParams{Email: &email}, true)
	assert.True(t, fieldErrors(t, err).Has("email"))

	// Keeping one's own address is not a conflict.
	own := "me@example.com"
	_, err = s.Update(ctx, u, UpdateParams{Email: &own}, true)
	assert.NoError(t, err)
}
