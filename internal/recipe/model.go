// Package recipe holds the per-user tags, ingredients and recipes and their
// HTTP handlers.
package recipe

import (
	"time"
)

type Tag struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

type Ingredient struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Price       Price
	Link        string
	Image       string // storage key, empty when no image is attached
	Tags        []Tag
	Ingredients []Ingredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TagIDs returns the ids of r's tags in stored order.
func (r *Recipe) TagIDs() []int64 {
	ids := make([]int64, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IngredientIDs returns the ids of r's ingredients in stored order.
func (r *Recipe) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ids = append(ids, i.ID)
	}
	return ids
}

// Filter narrows a recipe listing. A recipe matches when it carries any of
// the listed tags and any of the listed ingredients; empty lists match all.
type Filter struct {
	TagIDs        []int64
	IngredientIDs []int64
}
