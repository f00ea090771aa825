package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Email        string     `bun:"email,notnull,unique"`
	Name         string     `bun:"name,notnull"`
	PasswordHash string     `bun:"password_hash,notnull"`
	IsActive     bool       `bun:"is_active,notnull"`
	IsStaff      bool       `bun:"is_staff,notnull"`
	IsSuperuser  bool       `bun:"is_superuser,notnull"`
	LastLogin    *time.Time `bun:"last_login"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
}

// AuthToken is the auth_tokens table; at most one row per user.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:at"`

	Key       string    `bun:"key,pk"`
	UserID    int64     `bun:"user_id,notnull,unique"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Tag is the tags table.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Ingredient is the ingredients table.
type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:ing"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Recipe is the recipes table. Price is kept in its decimal text form.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID          int64         `bun:"id,pk,autoincrement"`
	UserID      int64         `bun:"user_id,notnull"`
	Title       string        `bun:"title,notnull"`
	TimeMinutes int           `bun:"time_minutes,notnull"`
	Price       string        `bun:"price,notnull"`
	Link        string        `bun:"link,notnull"`
	Image       *string       `bun:"image"`
	Tags        []*Tag        `bun:"m2m:recipe_tags,join:Recipe=Tag"`
	Ingredients []*Ingredient `bun:"m2m:recipe_ingredients,join:Recipe=Ingredient"`
	CreatedAt   time.Time     `bun:"created_at,notnull"`
	UpdatedAt   time.Time     `bun:"updated_at,notnull"`
}

// RecipeTag joins recipes and tags.
type RecipeTag struct {
	bun.BaseModel `bun:"table:recipe_tags,alias:rt"`

	RecipeID int64   `bun:"recipe_id,pk"`
	Recipe   *Recipe `bun:"rel:belongs-to,join:recipe_id=id"`
	TagID    int64   `bun:"tag_id,pk"`
	Tag      *Tag    `bun:"rel:belongs-to,join:tag_id=id"`
}

// RecipeIngredient joins recipes and ingredients.
type RecipeIngredient struct {
	bun.BaseModel `bun:"table:recipe_ingredients,alias:ri"`

	RecipeID     int64       `bun:"recipe_id,pk"`
	Recipe       *Recipe     `bun:"rel:belongs-to,join:recipe_id=id"`
	IngredientID int64       `bun:"ingredient_id,pk"`
	Ingredient   *Ingredient `bun:"rel:belongs-to,join:ingredient_id=id"`
}

// Models lists every table model in creation order.
func Models() []any {
	return []any{
		(*User)(nil),
		(*AuthToken)(nil),
		(*Tag)(nil),
		(*Ingredient)(nil),
		(*Recipe)(nil),
		(*RecipeTag)(nil),
		(*RecipeIngredient)(nil),
	}
}

// RegisterModels registers the m2m join models. bun requires this before any
// query touches Recipe.Tags or Recipe.Ingredients.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*RecipeTag)(nil), (*RecipeIngredient)(nil))
}
