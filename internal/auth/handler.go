package auth

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/recipe-api/internal/httputil"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/metrics"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

const msgBadCredentials = "Unable to authenticate with provided credentials."

// Handler contains the HTTP handler for the token endpoint
type Handler struct {
	service   *Service
	validator *validation.Validator
	metrics   metrics.Recorder
}

func NewHandler(service *Service, validator *validation.Validator, recorder metrics.Recorder) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		metrics:   recorder,
	}
}

// TokenRequest represents the token request body
type TokenRequest struct {
	Email    *string `json:"email" validate:"required,min=1"`
	Password *string `json:"password" validate:"required,min=1"`
}

// TokenResponse carries the issued token
type TokenResponse struct {
	Token string `json:"token"`
}

// ObtainToken exchanges credentials for the user's token
// @Summary      Obtain an auth token
// @Description  Returns the caller's token, issuing one on first use. Send it as "Authorization: Token <key>".
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body TokenRequest true "Credentials"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} map[string][]string "Missing fields or invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse
// @Router       /user/token [post]
func (h *Handler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req TokenRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid token request body", "error", err.Error())
		httputil.RespondDecodeError(w, err)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			httputil.RespondValidation(w, errs)
			return
		}
		logger.Error("token request validation failed", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	key, reused, err := h.service.Obtain(r.Context(), *req.Email, *req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("token request rejected: invalid credentials")
			httputil.RespondValidation(w, validation.Field(validation.NonFieldErrors, msgBadCredentials))
			return
		}
		logger.Error("token request failed", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	logger.Info("token issued", "reused", reused)
	h.metrics.TokenIssued(reused)

	httputil.RespondJSON(w, TokenResponse{Token: key}, http.StatusOK)
}
