package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redmonkez12/recipe-api/internal/validation"
)

// Action names the operation a recipe request performs. Each action has one
// fixed representation in recipeSerializers.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionPartialUpdate
	ActionUploadImage
)

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	case ActionUploadImage:
		return "upload_image"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// URLFunc turns a storage key into a public URL.
type URLFunc func(key string) string

type serializeFunc func(r *Recipe, imageURL URLFunc) any

var recipeSerializers = map[Action]serializeFunc{
	ActionList:          toRecipeResponse,
	ActionRetrieve:      toRecipeDetailResponse,
	ActionCreate:        toRecipeResponse,
	ActionUpdate:        toRecipeResponse,
	ActionPartialUpdate: toRecipeResponse,
	ActionUploadImage:   toRecipeImageResponse,
}

// Serialize renders r the way action a presents it.
func Serialize(a Action, r *Recipe, imageURL URLFunc) any {
	serialize, ok := recipeSerializers[a]
	if !ok {
		panic("recipe: no serializer for " + a.String())
	}
	return serialize(r, imageURL)
}

// NameInput is the write payload of tags and ingredients.
type NameInput struct {
	Name *string `json:"name" validate:"required,min=1,max=255"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type IngredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewTagResponse(t Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name}
}

func NewIngredientResponse(i Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name}
}

// RecipeResponse is the list and write representation: relations as ids.
type RecipeResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       Price   `json:"price" swaggertype:"string" example:"5.00"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
	Link        string  `json:"link"`
}

// RecipeDetailResponse nests the related tags and ingredients.
type RecipeDetailResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       Price                `json:"price" swaggertype:"string" example:"5.00"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	Link        string               `json:"link"`
}

// RecipeImageResponse is returned by the image upload.
type RecipeImageResponse struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

func toRecipeResponse(r *Recipe, _ URLFunc) any {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
		Link:        r.Link,
	}
}

func toRecipeDetailResponse(r *Recipe, _ URLFunc) any {
	resp := RecipeDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Tags:        make([]TagResponse, 0, len(r.Tags)),
		Ingredients: make([]IngredientResponse, 0, len(r.Ingredients)),
		Link:        r.Link,
	}
	for _, t := range r.Tags {
		resp.Tags = append(resp.Tags, NewTagResponse(t))
	}
	for _, i := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, NewIngredientResponse(i))
	}
	return resp
}

func toRecipeImageResponse(r *Recipe, imageURL URLFunc) any {
	resp := RecipeImageResponse{ID: r.ID}
	if r.Image != "" {
		url := imageURL(r.Image)
		resp.Image = &url
	}
	return resp
}

// RecipeInput is the write payload of a recipe. Nil fields were not sent.
type RecipeInput struct {
	Title       *string         `json:"title" validate:"omitnil,min=1,max=255"`
	TimeMinutes *int            `json:"time_minutes"`
	Price       json.RawMessage `json:"price" swaggertype:"string" example:"5.00"`
	Link        *string         `json:"link" validate:"omitnil,max=255"`
	Tags        *[]int64        `json:"tags"`
	Ingredients *[]int64        `json:"ingredients"`

	// nulls lists the fields sent as an explicit JSON null.
	nulls []string
}

// UnmarshalJSON decodes the payload and records explicit nulls, which a
// pointer field alone cannot tell apart from an absent key.
func (in *RecipeInput) UnmarshalJSON(data []byte) error {
	type plain RecipeInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range recipeInputFields {
		if v, ok := raw[field]; ok && string(bytes.TrimSpace(v)) == "null" {
			p.nulls = append(p.nulls, field)
		}
	}
	if slices.Contains(p.nulls, "price") {
		p.Price = nil
	}

	*in = RecipeInput(p)
	return nil
}

var recipeInputFields = []string{"title", "time_minutes", "price", "link", "tags", "ingredients"}

// recipeChanges is a validated RecipeInput.
type recipeChanges struct {
	Title       *string
	TimeMinutes *int
	Price       *Price
	Link        *string
	Tags        *[]int64
	Ingredients *[]int64
}

// validate checks field shapes. Without partial, title, time_minutes and
// price are required. Relation ids are checked later against the owner.
func (in RecipeInput) validate(v *validation.Validator, partial bool) (*recipeChanges, error) {
	errs := validation.New()
	for _, field := range in.nulls {
		errs.Add(field, validation.MsgNull)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}

	if err := v.Validate(in); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		errs.Merge(fieldErrs)
	}

	changes := &recipeChanges{
		Title:       in.Title,
		TimeMinutes: in.TimeMinutes,
		Link:        in.Link,
		Tags:        dedupe(in.Tags),
		Ingredients: dedupe(in.Ingredients),
	}

	if len(in.Price) > 0 {
		price, err := parsePriceJSON(in.Price)
		if err != nil {
			errs.Add("price", err.Error())
		} else {
			changes.Price = &price
		}
	}

	if !partial {
		if in.Title == nil && !errs.Has("title") {
			errs.Add("title", validation.MsgRequired)
		}
		if in.TimeMinutes == nil && !errs.Has("time_minutes") {
			errs.Add("time_minutes", validation.MsgRequired)
		}
		if len(in.Price) == 0 && !errs.Has("price") {
			errs.Add("price", validation.MsgRequired)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids *[]int64) *[]int64 {
	if ids == nil {
		return nil
	}

	seen := make(map[int64]bool, len(*ids))
	out := make([]int64, 0, len(*ids))
	for _, id := range *ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return &out
}
