package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/recipe-api/internal/database"
)

var ErrNotFound = errors.New("not found")

// Repository persists tags, ingredients and recipes. Every read and write
// takes the owner's id and filters on it in the query itself.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListTags returns userID's tags ordered by name.
func (r *Repository) ListTags(ctx context.Context, userID int64) ([]Tag, error) {
	var rows []database.Tag
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make([]Tag, 0, len(rows))
	for i := range rows {
		tags = append(tags, mapDBTagToModel(&rows[i]))
	}
	return tags, nil
}

// CreateTag inserts t and fills in its ID.
func (r *Repository) CreateTag(ctx context.Context, t *Tag) error {
	row := &database.Tag{
		UserID:    t.UserID,
		Name:      t.Name,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	*t = mapDBTagToModel(row)
	return nil
}

// ListIngredients returns userID's ingredients ordered by name.
func (r *Repository) ListIngredients(ctx context.Context, userID int64) ([]Ingredient, error) {
	var rows []database.Ingredient
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	ingredients := make([]Ingredient, 0, len(rows))
	for i := range rows {
		ingredients = append(ingredients, mapDBIngredientToModel(&rows[i]))
	}
	return ingredients, nil
}

// CreateIngredient inserts in and fills in its ID.
func (r *Repository) CreateIngredient(ctx context.Context, in *Ingredient) error {
	row := &database.Ingredient{
		UserID:    in.UserID,
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	*in = mapDBIngredientToModel(row)
	return nil
}

// OwnedTagIDs returns the subset of ids that are tags of userID.
func (r *Repository) OwnedTagIDs(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	return r.ownedIDs(ctx, (*database.Tag)(nil), userID, ids)
}

// OwnedIngredientIDs returns the subset of ids that are ingredients of userID.
func (r *Repository) OwnedIngredientIDs(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	return r.ownedIDs(ctx, (*database.Ingredient)(nil), userID, ids)
}

func (r *Repository) ownedIDs(ctx context.Context, model any, userID int64, ids []int64) (map[int64]bool, error) {
	owned := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return owned, nil
	}

	var found []int64
	err := r.db.NewSelect().
		Model(model).
		Column("id").
		Where("user_id = ?", userID).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ids: %w", err)
	}

	for _, id := range found {
		owned[id] = true
	}
	return owned, nil
}

// ListRecipes returns userID's recipes, newest first, with their tags and
// ingredients loaded.
func (r *Repository) ListRecipes(ctx context.Context, userID int64, filter Filter) ([]Recipe, error) {
	var rows []database.Recipe
	q := r.db.NewSelect().
		Model(&rows).
		Where("r.user_id = ?", userID).
		Relation("Tags", orderByID("tag")).
		Relation("Ingredients", orderByID("ing")).
		Order("r.id DESC")

	if len(filter.TagIDs) > 0 {
		q = q.Where("r.id IN (?)", r.db.NewSelect().
			Model((*database.RecipeTag)(nil)).
			Column("recipe_id").
			Where("tag_id IN (?)", bun.In(filter.TagIDs)))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("r.id IN (?)", r.db.NewSelect().
			Model((*database.RecipeIngredient)(nil)).
			Column("recipe_id").
			Where("ingredient_id IN (?)", bun.In(filter.IngredientIDs)))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]Recipe, 0, len(rows))
	for i := range rows {
		recipes = append(recipes, mapDBRecipeToModel(&rows[i]))
	}
	return recipes, nil
}

// GetRecipe loads one of userID's recipes. Another user's recipe is
// reported as ErrNotFound.
func (r *Repository) GetRecipe(ctx context.Context, userID, id int64) (*Recipe, error) {
	return getRecipe(ctx, r.db, userID, id)
}

func getRecipe(ctx context.Context, db bun.IDB, userID, id int64) (*Recipe, error) {
	row := new(database.Recipe)
	err := db.NewSelect().
		Model(row).
		Where("r.id = ?", id).
		Where("r.user_id = ?", userID).
		Relation("Tags", orderByID("tag")).
		Relation("Ingredients", orderByID("ing")).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	recipe := mapDBRecipeToModel(row)
	return &recipe, nil
}

// CreateRecipe inserts rec with the given relation members in one
// transaction and returns the stored recipe.
func (r *Repository) CreateRecipe(ctx context.Context, rec *Recipe, tagIDs, ingredientIDs []int64) (*Recipe, error) {
	now := time.Now().UTC()
	row := &database.Recipe{
		UserID:      rec.UserID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price.String(),
		Link:        rec.Link,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created *Recipe
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, row.ID, tagIDs); err != nil {
			return err
		}
		if err := replaceIngredients(ctx, tx, row.ID, ingredientIDs); err != nil {
			return err
		}

		var err error
		created, err = getRecipe(ctx, tx, row.UserID, row.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return created, nil
}

// UpdateRecipe writes rec's scalar columns and, for non-nil id lists,
// replaces the relation set with exactly those members.
func (r *Repository) UpdateRecipe(ctx context.Context, rec *Recipe, tagIDs, ingredientIDs *[]int64) (*Recipe, error) {
	var updated *Recipe
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*database.Recipe)(nil)).
			Set("title = ?", rec.Title).
			Set("time_minutes = ?", rec.TimeMinutes).
			Set("price = ?", rec.Price.String()).
			Set("link = ?", rec.Link).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", rec.ID).
			Where("user_id = ?", rec.UserID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}

		if tagIDs != nil {
			if err := replaceTags(ctx, tx, rec.ID, *tagIDs); err != nil {
				return err
			}
		}
		if ingredientIDs != nil {
			if err := replaceIngredients(ctx, tx, rec.ID, *ingredientIDs); err != nil {
				return err
			}
		}

		updated, err = getRecipe(ctx, tx, rec.UserID, rec.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	return updated, nil
}

// DeleteRecipe removes one of userID's recipes with its relation rows.
func (r *Repository) DeleteRecipe(ctx context.Context, userID, id int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*database.Recipe)(nil)).
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}

		// Postgres cascades these; SQLite test databases have no foreign keys.
		if err := replaceTags(ctx, tx, id, nil); err != nil {
			return err
		}
		return replaceIngredients(ctx, tx, id, nil)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	return nil
}

// SetRecipeImage points the recipe at key and returns the key it replaced.
func (r *Repository) SetRecipeImage(ctx context.Context, userID, id int64, key string) (previous string, err error) {
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(database.Recipe)
		err := tx.NewSelect().
			Model(row).
			Column("id", "image").
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if row.Image != nil {
			previous = *row.Image
		}

		_, err = tx.NewUpdate().
			Model((*database.Recipe)(nil)).
			Set("image = ?", key).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to set recipe image: %w", err)
	}

	return previous, nil
}

func replaceTags(ctx context.Context, tx bun.Tx, recipeID int64, ids []int64) error {
	if _, err := tx.NewDelete().
		Model((*database.RecipeTag)(nil)).
		Where("recipe_id = ?", recipeID).
		Exec(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]database.RecipeTag, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, database.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func replaceIngredients(ctx context.Context, tx bun.Tx, recipeID int64, ids []int64) error {
	if _, err := tx.NewDelete().
		Model((*database.RecipeIngredient)(nil)).
		Where("recipe_id = ?", recipeID).
		Exec(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]database.RecipeIngredient, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, database.RecipeIngredient{RecipeID: recipeID, IngredientID: id})
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func orderByID(alias string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order(alias + ".id ASC")
	}
}

func mapDBTagToModel(t *database.Tag) Tag {
	return Tag{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func mapDBIngredientToModel(i *database.Ingredient) Ingredient {
	return Ingredient{
		ID:        i.ID,
		UserID:    i.UserID,
		Name:      i.Name,
		CreatedAt: i.CreatedAt,
	}
}

func mapDBRecipeToModel(r *database.Recipe) Recipe {
	// Stored prices always satisfy NUMERIC(5,2).
	price, _ := ParsePrice(r.Price)

	rec := Recipe{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       price,
		Link:        r.Link,
		Tags:        make([]Tag, 0, len(r.Tags)),
		Ingredients: make([]Ingredient, 0, len(r.Ingredients)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Image != nil {
		rec.Image = *r.Image
	}
	for _, t := range r.Tags {
		rec.Tags = append(rec.Tags, mapDBTagToModel(t))
	}
	for _, i := range r.Ingredients {
		rec.Ingredients = append(rec.Ingredients, mapDBIngredientToModel(i))
	}
	return rec
}
