package recipe

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/recipe-api/internal/database/dbtest"
	"github.com/redmonkez12/recipe-api/internal/storage"
	"github.com/redmonkez12/recipe-api/internal/user"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

type fixture struct {
	db      *bun.DB
	repo    *Repository
	store   *storage.LocalStorage
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "http://testserver/media")
	require.NoError(t, err)

	repo := NewRepository(db)
	return &fixture{
		db:      db,
		repo:    repo,
		store:   store,
		service: NewService(repo, store, validation.NewValidator()),
	}
}

func (f *fixture) user(t *testing.T, email string) *user.User {
	t.Helper()

	u := &user.User{Email: email, PasswordHash: "unused", IsActive: true}
	require.NoError(t, user.NewRepository(f.db).Create(context.Background(), u))
	return u
}

func (f *fixture) tag(t *testing.T, owner *user.User, name string) *Tag {
	t.Helper()

	tag, err := f.service.CreateTag(context.Background(), owner.ID, NameInput{Name: &name})
	require.NoError(t, err)
	return tag
}

func (f *fixture) ingredient(t *testing.T, owner *user.User, name string) *Ingredient {
	t.Helper()

	ing, err := f.service.CreateIngredient(context.Background(), owner.ID, NameInput{Name: &name})
	require.NoError(t, err)
	return ing
}

// recipe creates a sample recipe; tweak may adjust the payload first.
func (f *fixture) recipe(t *testing.T, owner *user.User, tweak func(*RecipeInput)) *Recipe {
	t.Helper()

	in := sampleInput()
	if tweak != nil {
		tweak(&in)
	}
	rec, err := f.service.CreateRecipe(context.Background(), owner.ID, in)
	require.NoError(t, err)
	return rec
}

func sampleInput() RecipeInput {
	title, minutes := "Sample recipe", 10
	return RecipeInput{
		Title:       &title,
		TimeMinutes: &minutes,
		Price:       []byte(`5.00`),
	}
}

func ids(v ...int64) *[]int64 {
	return &v
}

func pngImage(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}
