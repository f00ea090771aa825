package httputil

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/redmonkez12/recipe-api/internal/validation"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondValidation sends the field -> messages map as a 400 response.
func RespondValidation(w http.ResponseWriter, errs validation.Errors) {
	RespondJSON(w, errs, http.StatusBadRequest)
}

// RespondNotFound sends the 404 used for both missing and foreign rows.
func RespondNotFound(w http.ResponseWriter) {
	RespondErrorWithCode(w, "not found", CodeNotFound, http.StatusNotFound)
}

// RespondInternalError sends a generic 500.
func RespondInternalError(w http.ResponseWriter) {
	RespondErrorWithCode(w, "internal server error", CodeInternalError, http.StatusInternalServerError)
}

// MethodNotAllowed is installed as the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondErrorWithCode(w, `method "`+r.Method+`" not allowed`, CodeMethodNotAllowed, http.StatusMethodNotAllowed)
}

// NotFound is installed as the router's 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondNotFound(w)
}
