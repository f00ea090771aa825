package recipe

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/recipe-api/internal/httputil"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/metrics"
	"github.com/redmonkez12/recipe-api/internal/user"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// Handler contains HTTP handlers for tags, ingredients and recipes. Every
// route sits behind the auth middleware.
type Handler struct {
	service       *Service
	metrics       metrics.Recorder
	maxUploadSize int64
}

func NewHandler(service *Service, recorder metrics.Recorder, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		metrics:       recorder,
		maxUploadSize: maxUploadSize,
	}
}

// ListTags lists the caller's tags
// @Summary      List tags
// @Tags         recipe
// @Produce      json
// @Security     TokenAuth
// @Success      200 {array} TagResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	tags, err := h.service.ListTags(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "list tags", err)
		return
	}

	resp := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, NewTagResponse(t))
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// CreateTag creates a tag owned by the caller
// @Summary      Create tag
// @Tags         recipe
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body NameInput true "Tag"
// @Success      201 {object} TagResponse
// @Failure      400 {object} map[string][]string "Validation errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in NameInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondDecodeError(w, err)
		return
	}

	t, err := h.service.CreateTag(r.Context(), owner, in)
	if err != nil {
		h.fail(w, r, "create tag", err)
		return
	}

	httputil.RespondJSON(w, NewTagResponse(*t), http.StatusCreated)
}

// ListIngredients lists the caller's ingredients
// @Summary      List ingredients
// @Tags         recipe
// @Produce      json
// @Security     TokenAuth
// @Success      200 {array} IngredientResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/ingredient [get]
func (h *Handler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	ingredients, err := h.service.ListIngredients(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "list ingredients", err)
		return
	}

	resp := make([]IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		resp = append(resp, NewIngredientResponse(i))
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// CreateIngredient creates an ingredient owned by the caller
// @Summary      Create ingredient
// @Tags         recipe
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body NameInput true "Ingredient"
// @Success      201 {object} IngredientResponse
// @Failure      400 {object} map[string][]string "Validation errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/ingredient [post]
func (h *Handler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in NameInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondDecodeError(w, err)
		return
	}

	ing, err := h.service.CreateIngredient(r.Context(), owner, in)
	if err != nil {
		h.fail(w, r, "create ingredient", err)
		return
	}

	httputil.RespondJSON(w, NewIngredientResponse(*ing), http.StatusCreated)
}

// ListRecipes lists the caller's recipes, newest first
// @Summary      List recipes
// @Tags         recipe
// @Produce      json
// @Security     TokenAuth
// @Param        tags         query string false "Comma separated tag ids"
// @Param        ingredients  query string false "Comma separated ingredient ids"
// @Success      200 {array} RecipeResponse
// @Failure      400 {object} map[string][]string "Malformed filter"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/recipe [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	filter, errs := parseFilter(r)
	if errs != nil {
		httputil.RespondValidation(w, errs)
		return
	}

	recipes, err := h.service.ListRecipes(r.Context(), owner, filter)
	if err != nil {
		h.fail(w, r, "list recipes", err)
		return
	}

	resp := make([]any, 0, len(recipes))
	for i := range recipes {
		resp = append(resp, Serialize(ActionList, &recipes[i], h.service.ImageURL))
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// CreateRecipe creates a recipe owned by the caller
// @Summary      Create recipe
// @Tags         recipe
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body RecipeInput true "Recipe"
// @Success      201 {object} RecipeResponse
// @Failure      400 {object} map[string][]string "Validation errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /recipe/recipe [post]
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in RecipeInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondDecodeError(w, err)
		return
	}

	rec, err := h.service.CreateRecipe(r.Context(), owner, in)
	if err != nil {
		h.fail(w, r, "create recipe", err)
		return
	}

	h.metrics.RecipeCreated()
	httputil.RespondJSON(w, Serialize(ActionCreate, rec, h.service.ImageURL), http.StatusCreated)
}

// GetRecipe returns one recipe with nested tags and ingredients
// @Summary      Recipe detail
// @Tags         recipe
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Recipe ID"
// @Success      200 {object} RecipeDetailResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /recipe/recipe/{id} [get]
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.GetRecipe(r.Context(), owner, id)
	if err != nil {
		h.fail(w, r, "get recipe", err)
		return
	}

	httputil.RespondJSON(w, Serialize(ActionRetrieve, rec, h.service.ImageURL), http.StatusOK)
}

// UpdateRecipe replaces (PUT) or partially updates (PATCH) a recipe
// @Summary      Update recipe
// @Description  PUT replaces every field; tags and ingredients that are not sent are cleared. PATCH changes only the fields sent.
// @Tags         recipe
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id      path int         true "Recipe ID"
// @Param        request body RecipeInput true "Recipe fields"
// @Success      200 {object} RecipeResponse
// @Failure      400 {object} map[string][]string "Validation errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /recipe/recipe/{id} [put]
// @Router       /recipe/recipe/{id} [patch]
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	var in RecipeInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondDecodeError(w, err)
		return
	}

	action := ActionUpdate
	if r.Method == http.MethodPatch {
		action = ActionPartialUpdate
	}

	rec, err := h.service.UpdateRecipe(r.Context(), owner, id, in, action == ActionPartialUpdate)
	if err != nil {
		h.fail(w, r, action.String(), err)
		return
	}

	httputil.RespondJSON(w, Serialize(action, rec, h.service.ImageURL), http.StatusOK)
}

// DeleteRecipe deletes a recipe
// @Summary      Delete recipe
// @Tags         recipe
// @Security     TokenAuth
// @Param        id path int true "Recipe ID"
// @Success      204
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /recipe/recipe/{id} [delete]
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRecipe(r.Context(), owner, id); err != nil {
		h.fail(w, r, "delete recipe", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage attaches an image to a recipe
// @Summary      Upload recipe image
// @Tags         recipe
// @Accept       multipart/form-data
// @Produce      json
// @Security     TokenAuth
// @Param        id    path     int  true "Recipe ID"
// @Param        image formData file true "JPEG, PNG, GIF or WebP image"
// @Success      200 {object} RecipeImageResponse
// @Failure      400 {object} map[string][]string "Missing or invalid image"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      413 {object} httputil.ErrorResponse
// @Router       /recipe/recipe/{id}/upload-image [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	upload, err := h.readUpload(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondErrorWithCode(w, "image exceeds the upload size limit", httputil.CodeRequestTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Warn("unreadable upload", "error", err.Error())
		httputil.RespondValidation(w, validation.Field("image", msgNoFile))
		return
	}

	rec, err := h.service.UploadImage(r.Context(), owner, id, upload)
	if err != nil {
		h.fail(w, r, "upload image", err)
		return
	}

	h.metrics.ImageUploaded()
	httputil.RespondJSON(w, Serialize(ActionUploadImage, rec, h.service.ImageURL), http.StatusOK)
}

// readUpload pulls the "image" part out of a multipart body.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return Upload{}, nil
		}
		return Upload{}, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			_, sentAsValue := r.MultipartForm.Value["image"]
			return Upload{Present: sentAsValue}, nil
		}
		return Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, err
	}

	return Upload{Present: true, IsFile: true, Data: data}, nil
}

// owner returns the authenticated user's id or writes 401.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication credentials were not provided.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return 0, false
	}
	return u.ID, true
}

// fail maps service errors to responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		httputil.RespondValidation(w, errs)
	case errors.Is(err, ErrNotFound):
		httputil.RespondNotFound(w)
	default:
		logging.GetLoggerFromContext(r.Context()).Error(op+" failed", "error", err.Error())
		httputil.RespondInternalError(w)
	}
}

// recipeID reads the {id} URL parameter. Anything but a positive integer
// cannot name a recipe, so it is a 404.
func recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondNotFound(w)
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) (Filter, validation.Errors) {
	errs := validation.New()
	var filter Filter

	query := r.URL.Query()
	if raw := query.Get("tags"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			errs.Add("tags", "Enter a comma separated list of ids.")
		}
		filter.TagIDs = ids
	}
	if raw := query.Get("ingredients"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			errs.Add("ingredients", "Enter a comma separated list of ids.")
		}
		filter.IngredientIDs = ids
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return filter, nil
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
