package httputil

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeTooManyRequests    = "too_many_requests"
	CodeRequestTooLarge    = "request_too_large"
	CodeInternalError      = "internal_error"
)
