package vaultsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeValidation             = "validation_error"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeEmailTaken             = "email_taken"
	ErrorCodeIncompleteRotation     = "incomplete_rotation"
	ErrorCodeInvalidRotationPayload = "invalid_rotation_payload"
	ErrorCodeConcurrentRotation     = "concurrent_rotation"
	ErrorCodeTOTPAlreadyEnabled     = "totp_already_enabled"
	ErrorCodeTOTPNotEnrolled        = "totp_not_enrolled"
	ErrorCodeInvalidTOTPCode        = "invalid_totp_code"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
	ErrorCodeServerError            = "server_error"
)

// Problem kinds.
const (
	ProblemMissing = "missing"
	ProblemEmpty   = "empty"
)

// Problem is one rejected part of a rotation request.
type Problem struct {
	Kind   string   `json:"kind"`
	Domain string   `json:"domain"`
	IDs    []string `json:"ids,omitempty"`
	Field  string   `json:"field,omitempty"`
}

// APIError is the body of every non-2xx response.
type APIError struct {
	StatusCode int `json:"-"`

	Code     string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Problems []Problem         `json:"problems,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vault: %d %s", e.StatusCode, e.Code)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "; %s %s %s", p.Kind, p.Domain, strings.Join(p.IDs, ","))
	}
	return b.String()
}

// Is matches another *APIError by code, so errors.Is(err, &APIError{Code: ...})
// works.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// MissingIDs returns the ids the server reported missing for domain.
func (e *APIError) MissingIDs(domain string) []string {
	for _, p := range e.Problems {
		if p.Kind == ProblemMissing && p.Domain == domain {
			return p.IDs
		}
	}
	return nil
}

var (
	ErrInvalidCredentials = &APIError{Code: ErrorCodeInvalidCredentials}
	ErrIncompleteRotation = &APIError{Code: ErrorCodeIncompleteRotation}
	ErrConcurrentRotation = &APIError{Code: ErrorCodeConcurrentRotation}
	ErrInvalidToken       = &APIError{Code: ErrorCodeInvalidToken}
)

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = ErrorCodeServerError
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
