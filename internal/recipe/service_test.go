package recipe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/recipe-api/internal/validation"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestService_TagsScopedAndSorted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.tag(t, alice, "Vegan")
	f.tag(t, alice, "Dessert")
	f.tag(t, bob, "Fruity")

	tags, err := f.service.ListTags(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Dessert", tags[0].Name)
	assert.Equal(t, "Vegan", tags[1].Name)
	for _, tag := range tags {
		assert.Equal(t, alice.ID, tag.UserID)
	}
}

func TestService_CreateTagRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")

	for _, name := range []string{"", "   "} {
		_, err := f.service.CreateTag(ctx, u.ID, NameInput{Name: &name})
		assert.Equal(t, []string{validation.MsgBlank}, fieldErrors(t, err)["name"])

		_, err = f.service.CreateIngredient(ctx, u.ID, NameInput{Name: &name})
		assert.True(t, fieldErrors(t, err).Has("name"))
	}

	_, err := f.service.CreateTag(ctx, u.ID, NameInput{})
	assert.Equal(t, []string{validation.MsgRequired}, fieldErrors(t, err)["name"])

	tags, err := f.service.ListTags(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
	ingredients, err := f.service.ListIngredients(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}

func TestService_IngredientsScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.ingredient(t, alice, "Salt")
	f.ingredient(t, alice, "Kale")
	f.ingredient(t, bob, "Vinegar")

	ingredients, err := f.service.ListIngredients(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Kale", ingredients[0].Name)
	assert.Equal(t, "Salt", ingredients[1].Name)
}

func TestService_CreateRecipeWithRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	vegan := f.tag(t, u, "Vegan")
	dessert := f.tag(t, u, "Dessert")
	prawns := f.ingredient(t, u, "Prawns")

	rec := f.recipe(t, u, func(in *RecipeInput) {
		in.Tags = ids(dessert.ID, vegan.ID, vegan.ID)
		in.Ingredients = ids(prawns.ID)
	})

	assert.Equal(t, u.ID, rec.UserID)
	assert.Equal(t, Price(500), rec.Price)
	assert.Equal(t, []int64{vegan.ID, dessert.ID}, rec.TagIDs())
	assert.Equal(t, []int64{prawns.ID}, rec.IngredientIDs())

	got, err := f.service.GetRecipe(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "Vegan", got.Tags[0].Name)
	assert.Equal(t, "Dessert", got.Tags[1].Name)
}

func TestService_CreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "test@example.com")

	_, err := f.service.CreateRecipe(context.Background(), u.ID, RecipeInput{Price: []byte(`"12345.6"`)})
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{validation.MsgRequired}, errs["title"])
	assert.Equal(t, []string{validation.MsgRequired}, errs["time_minutes"])
	assert.Equal(t, []string{msgPriceDigits}, errs["price"])
}

func TestService_RelationsMustBeOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	mine := f.tag(t, alice, "Mine")
	theirs := f.tag(t, bob, "Theirs")
	theirIngredient := f.ingredient(t, bob, "Saffron")

	in := sampleInput()
	in.Tags = ids(mine.ID, theirs.ID)
	in.Ingredients = ids(theirIngredient.ID)

	_, err := f.service.CreateRecipe(ctx, alice.ID, in)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{invalidPK(theirs.ID)}, errs["tags"])
	assert.Equal(t, []string{invalidPK(theirIngredient.ID)}, errs["ingredients"])

	recipes, err := f.service.ListRecipes(ctx, alice.ID, Filter{})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestService_FullUpdateClearsUnsentRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	tag := f.tag(t, u, "Dessert")
	ing := f.ingredient(t, u, "Sugar")
	rec := f.recipe(t, u, func(in *RecipeInput) {
		link := "https://example.com/recipe"
		in.Link = &link
		in.Tags = ids(tag.ID)
		in.Ingredients = ids(ing.ID)
	})

	title, minutes := "Spaghetti carbonara", 25
	updated, err := f.service.UpdateRecipe(ctx, u.ID, rec.ID, RecipeInput{
		Title:       &title,
		TimeMinutes: &minutes,
		Price:       []byte(`5.00`),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Spaghetti carbonara", updated.Title)
	assert.Equal(t, 25, updated.TimeMinutes)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, updated.Ingredients)
	assert.Equal(t, "", updated.Link)
}

func TestService_PartialUpdateReplacesSentRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	oldTag := f.tag(t, u, "Old")
	newTag := f.tag(t, u, "Curry")
	ing := f.ingredient(t, u, "Rice")
	rec := f.recipe(t, u, func(in *RecipeInput) {
		in.Tags = ids(oldTag.ID)
		in.Ingredients = ids(ing.ID)
	})

	title := "Chicken tikka"
	updated, err := f.service.UpdateRecipe(ctx, u.ID, rec.ID, RecipeInput{
		Title: &title,
		Tags:  ids(newTag.ID),
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "Chicken tikka", updated.Title)
	assert.Equal(t, 10, updated.TimeMinutes)
	assert.Equal(t, Price(500), updated.Price)
	assert.Equal(t, []int64{newTag.ID}, updated.TagIDs())
	assert.Equal(t, []int64{ing.ID}, updated.IngredientIDs())
}

func TestService_OtherUsersRecipesAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	rec := f.recipe(t, bob, nil)

	_, err := f.service.GetRecipe(ctx, alice.ID, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	title := "Hijacked"
	_, err = f.service.UpdateRecipe(ctx, alice.ID, rec.ID, RecipeInput{Title: &title}, true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.service.DeleteRecipe(ctx, alice.ID, rec.ID), ErrNotFound)

	_, err = f.service.UploadImage(ctx, alice.ID, rec.ID, Upload{Present: true, IsFile: true, Data: pngImage(t)})
	assert.ErrorIs(t, err, ErrNotFound)

	// Still intact for its owner.
	got, err := f.service.GetRecipe(ctx, bob.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample recipe", got.Title)
}

func TestService_ListRecipesNewestFirstAndFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	other := f.user(t, "other@example.com")
	vegan := f.tag(t, u, "Vegan")
	cheese := f.ingredient(t, u, "Feta")

	first := f.recipe(t, u, func(in *RecipeInput) { in.Tags = ids(vegan.ID) })
	second := f.recipe(t, u, func(in *RecipeInput) { in.Ingredients = ids(cheese.ID) })
	third := f.recipe(t, u, nil)
	f.recipe(t, other, nil)

	all, err := f.service.ListRecipes(ctx, u.ID, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	byTag, err := f.service.ListRecipes(ctx, u.ID, Filter{TagIDs: []int64{vegan.ID}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	byIngredient, err := f.service.ListRecipes(ctx, u.ID, Filter{IngredientIDs: []int64{cheese.ID}})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, second.ID, byIngredient[0].ID)
}

func TestService_DeleteRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	tag := f.tag(t, u, "Vegan")
	rec := f.recipe(t, u, func(in *RecipeInput) { in.Tags = ids(tag.ID) })

	require.NoError(t, f.service.DeleteRecipe(ctx, u.ID, rec.ID))

	_, err := f.service.GetRecipe(ctx, u.ID, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The tag itself survives.
	tags, err := f.service.ListTags(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestService_UploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	rec := f.recipe(t, u, nil)

	first, err := f.service.UploadImage(ctx, u.ID, rec.ID, Upload{Present: true, IsFile: true, Data: pngImage(t)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Image, imageKeyPrefix))
	assert.True(t, strings.HasSuffix(first.Image, ".png"))

	firstPath := filepath.Join(f.store.Root(), filepath.FromSlash(first.Image))
	_, err = os.Stat(firstPath)
	require.NoError(t, err)

	second, err := f.service.UploadImage(ctx, u.ID, rec.ID, Upload{Present: true, IsFile: true, Data: pngImage(t)})
	require.NoError(t, err)
	assert.NotEqual(t, first.Image, second.Image)

	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "replaced image should be removed")

	got, err := f.service.GetRecipe(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Image, got.Image)
}

func TestService_UploadImageRejectsBadPayloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "test@example.com")
	rec := f.recipe(t, u, nil)

	tests := []struct {
		name   string
		upload Upload
		msg    string
	}{
		{"missing", Upload{}, msgNoFile},
		{"plain value", Upload{Present: true}, msgNotAFile},
		{"not an image", Upload{Present: true, IsFile: true, Data: []byte("notimage")}, msgInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UploadImage(ctx, u.ID, rec.ID, tt.upload)
			assert.Equal(t, []string{tt.msg}, fieldErrors(t, err)["image"])
		})
	}

	got, err := f.service.GetRecipe(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)
}
