package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/storage"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

const (
	msgNoFile       = "No file was submitted."
	msgNotAFile     = "The submitted data was not a file. Check the encoding type on the form."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

	imageKeyPrefix = "uploads/recipe/"
)

// Service implements the recipe operations for one authenticated owner at
// a time. The owner id always comes from the caller, never the payload.
type Service struct {
	repo      *Repository
	storage   storage.Storage
	validator *validation.Validator
}

func NewService(repo *Repository, store storage.Storage, validator *validation.Validator) *Service {
	return &Service{
		repo:      repo,
		storage:   store,
		validator: validator,
	}
}

// ImageURL is the public URL of a stored image key.
func (s *Service) ImageURL(key string) string {
	return s.storage.URL(key)
}

func (s *Service) ListTags(ctx context.Context, ownerID int64) ([]Tag, error) {
	return s.repo.ListTags(ctx, ownerID)
}

func (s *Service) CreateTag(ctx context.Context, ownerID int64, in NameInput) (*Tag, error) {
	name, err := s.validateName(in)
	if err != nil {
		return nil, err
	}

	t := &Tag{UserID: ownerID, Name: name}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListIngredients(ctx context.Context, ownerID int64) ([]Ingredient, error) {
	return s.repo.ListIngredients(ctx, ownerID)
}

func (s *Service) CreateIngredient(ctx context.Context, ownerID int64, in NameInput) (*Ingredient, error) {
	name, err := s.validateName(in)
	if err != nil {
		return nil, err
	}

	ing := &Ingredient{UserID: ownerID, Name: name}
	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *Service) validateName(in NameInput) (string, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := s.validator.Validate(in); err != nil {
		return "", err
	}
	return *in.Name, nil
}

func (s *Service) ListRecipes(ctx context.Context, ownerID int64, filter Filter) ([]Recipe, error) {
	return s.repo.ListRecipes(ctx, ownerID, filter)
}

func (s *Service) GetRecipe(ctx context.Context, ownerID, id int64) (*Recipe, error) {
	return s.repo.GetRecipe(ctx, ownerID, id)
}

// CreateRecipe validates in and stores a recipe owned by ownerID.
func (s *Service) CreateRecipe(ctx context.Context, ownerID int64, in RecipeInput) (*Recipe, error) {
	changes, err := in.validate(s.validator, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, ownerID, changes); err != nil {
		return nil, err
	}

	rec := &Recipe{
		UserID:      ownerID,
		Title:       *changes.Title,
		TimeMinutes: *changes.TimeMinutes,
		Price:       *changes.Price,
	}
	if changes.Link != nil {
		rec.Link = *changes.Link
	}

	var tagIDs, ingredientIDs []int64
	if changes.Tags != nil {
		tagIDs = *changes.Tags
	}
	if changes.Ingredients != nil {
		ingredientIDs = *changes.Ingredients
	}

	created, err := s.repo.CreateRecipe(ctx, rec, tagIDs, ingredientIDs)
	if err != nil {
		return nil, err
	}

	logging.GetLoggerFromContext(ctx).Info("recipe created", "recipe_id", created.ID)
	return created, nil
}

// UpdateRecipe applies in to one of ownerID's recipes. A partial update
// leaves unsent fields alone. A full update resets every unsent optional
// field, so relations that are not sent end up empty.
func (s *Service) UpdateRecipe(ctx context.Context, ownerID, id int64, in RecipeInput, partial bool) (*Recipe, error) {
	current, err := s.repo.GetRecipe(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changes, err := in.validate(s.validator, partial)
	if err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, ownerID, changes); err != nil {
		return nil, err
	}

	next := *current
	if changes.Title != nil {
		next.Title = *changes.Title
	}
	if changes.TimeMinutes != nil {
		next.TimeMinutes = *changes.TimeMinutes
	}
	if changes.Price != nil {
		next.Price = *changes.Price
	}
	if changes.Link != nil {
		next.Link = *changes.Link
	} else if !partial {
		next.Link = ""
	}

	tags, ingredients := changes.Tags, changes.Ingredients
	if !partial {
		empty := []int64{}
		if tags == nil {
			tags = &empty
		}
		if ingredients == nil {
			ingredients = &empty
		}
	}

	return s.repo.UpdateRecipe(ctx, &next, tags, ingredients)
}

func (s *Service) DeleteRecipe(ctx context.Context, ownerID, id int64) error {
	rec, err := s.repo.GetRecipe(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRecipe(ctx, ownerID, id); err != nil {
		return err
	}

	if rec.Image != "" {
		s.removeImage(ctx, rec.Image)
	}
	return nil
}

// Upload is an image payload read from a request. Present is false when
// the form carried no "image" part at all; IsFile is false when it carried
// a plain value instead of a file.
type Upload struct {
	Present bool
	IsFile  bool
	Data    []byte
}

// UploadImage validates the payload, stores it under a fresh key and points
// the recipe at it. On any failure the recipe keeps its previous image.
func (s *Service) UploadImage(ctx context.Context, ownerID, id int64, upload Upload) (*Recipe, error) {
	rec, err := s.repo.GetRecipe(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	switch {
	case !upload.Present:
		return nil, validation.Field("image", msgNoFile)
	case !upload.IsFile:
		return nil, validation.Field("image", msgNotAFile)
	case len(upload.Data) == 0:
		return nil, validation.Field("image", "The submitted file is empty.")
	}

	info, err := storage.ValidateImage(upload.Data)
	if err != nil {
		return nil, validation.Field("image", msgInvalidImage)
	}

	key := imageKeyPrefix + uuid.NewString() + info.Extension
	if err := s.storage.Save(ctx, key, upload.Data, info.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous, err := s.repo.SetRecipeImage(ctx, ownerID, id, key)
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if previous != "" && previous != key {
		s.removeImage(ctx, previous)
	}

	logging.GetLoggerFromContext(ctx).Info("recipe image stored",
		"recipe_id", id,
		"format", info.Format,
		"bytes", len(upload.Data),
	)

	rec.Image = key
	return rec, nil
}

// removeImage deletes a stored image; failures only leave an orphan file.
func (s *Service) removeImage(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to delete image", "key", key, "error", err)
	}
}

// checkRelations resolves tag and ingredient ids through the owner filter.
// An id of another user is reported exactly like one that does not exist.
func (s *Service) checkRelations(ctx context.Context, ownerID int64, changes *recipeChanges) error {
	errs := validation.New()

	if changes.Tags != nil {
		owned, err := s.repo.OwnedTagIDs(ctx, ownerID, *changes.Tags)
		if err != nil {
			return err
		}
		if id, ok := firstMissing(*changes.Tags, owned); ok {
			errs.Add("tags", invalidPK(id))
		}
	}

	if changes.Ingredients != nil {
		owned, err := s.repo.OwnedIngredientIDs(ctx, ownerID, *changes.Ingredients)
		if err != nil {
			return err
		}
		if id, ok := firstMissing(*changes.Ingredients, owned); ok {
			errs.Add("ingredients", invalidPK(id))
		}
	}

	return errs.Err()
}

func firstMissing(ids []int64, owned map[int64]bool) (int64, bool) {
	for _, id := range ids {
		if !owned[id] {
			return id, true
		}
	}
	return 0, false
}

func invalidPK(id int64) string {
	return `Invalid pk "` + strconv.FormatInt(id, 10) + `" - object does not exist.`
}
