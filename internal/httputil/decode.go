package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/redmonkez12/recipe-api/internal/validation"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds maxJSONBody.
var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON decodes the request body into dst. Numbers are kept as
// json.Number so decimal fields are not rounded through float64.
//
// An empty body decodes as an empty object. Malformed JSON yields
// validation.Errors under non_field_errors; a type mismatch yields
// validation.Errors on the offending field.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("read body: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.Field(typeErr.Field, typeMismatchMessage(typeErr))
		}
		return validation.Field(validation.NonFieldErrors, "JSON parse error - "+err.Error())
	}

	return nil
}

func typeMismatchMessage(err *json.UnmarshalTypeError) string {
	switch err.Type.Kind().String() {
	case "int", "int64", "int32":
		return validation.MsgInvalidInt
	case "slice":
		return `Expected a list of items but got type "` + err.Value + `".`
	case "string":
		return "Not a valid string."
	default:
		return "Invalid value."
	}
}

// RespondDecodeError maps an error from DecodeJSON to a response.
func RespondDecodeError(w http.ResponseWriter, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		RespondValidation(w, errs)
	case errors.Is(err, ErrBodyTooLarge):
		RespondErrorWithCode(w, "request body too large", CodeRequestTooLarge, http.StatusRequestEntityTooLarge)
	default:
		RespondErrorWithCode(w, "invalid request body", CodeInvalidRequestBody, http.StatusBadRequest)
	}
}
