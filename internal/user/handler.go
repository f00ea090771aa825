package user

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/recipe-api/internal/httputil"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/metrics"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

// Handler contains HTTP handlers for registration and the caller's profile.
type Handler struct {
	service *Service
	metrics metrics.Recorder
}

func NewHandler(service *Service, recorder metrics.Recorder) *Handler {
	return &Handler{service: service, metrics: recorder}
}

// Register handles user registration
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body CreateParams true "Registration payload"
// @Success      201 {object} Profile
// @Failure      400 {object} map[string][]string "Validation errors"
// @Router       /user/create [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateParams
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondDecodeError(w, err)
		return
	}

	newUser, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondValidation(w, errs)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)
	h.metrics.UserRegistered()

	httputil.RespondJSON(w, newUser.Profile(), http.StatusCreated)
}

// Me returns the authenticated user's profile
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     TokenAuth
// @Success      200 {object} Profile
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /user/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, u.Profile(), http.StatusOK)
}

// UpdateMe handles PUT (full) and PATCH (partial) updates of the caller's profile
// @Summary      Update current user profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body UpdateParams true "Profile fields"
// @Success      200 {object} Profile
// @Failure      400 {object} map[string][]string "Validation errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /user/me [patch]
// @Router       /user/me [put]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateParams
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondDecodeError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), u, req, r.Method == http.MethodPatch)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			httputil.RespondValidation(w, errs)
			return
		}
		logger.Error("profile update failed", "user_id", u.ID, "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	logger.Info("profile updated", "user_id", u.ID, "password_changed", req.Password != nil)
	httputil.RespondJSON(w, updated.Profile(), http.StatusOK)
}
