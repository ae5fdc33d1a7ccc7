// ABOUTME: Structured authentication error taxonomy for the conversation service
// ABOUTME: Closed code set; auth failures are surfaced distinctly and never auto-retried

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Code is a machine-readable authentication failure code. The set is
// closed: hosts switch on it to decide whether to prompt for credentials.
type Code string

const (
	// CodeRequired means no usable credential was presented.
	CodeRequired Code = "required"
	// CodeInvalid means the credential was presented but rejected.
	CodeInvalid Code = "invalid"
	// CodeServiceUnavailable means the auth backend is temporarily down.
	CodeServiceUnavailable Code = "service-unavailable"
	// CodeServiceError means the auth backend failed internally.
	CodeServiceError Code = "service-error"
)

// Error is a structured authentication failure. It is a distinct error
// kind from generic network/HTTP failures: the controller surfaces it
// with its code and never retries it automatically.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Code, e.Message)
}

// RequiresAuth reports whether the failure is fixable by presenting
// (new) credentials, as opposed to a service-side outage.
func (e *Error) RequiresAuth() bool {
	return e.Code == CodeRequired || e.Code == CodeInvalid
}

// errorBody is the structured payload the service attaches to 401/503
// responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseHTTPError classifies a non-2xx response. Structured 401 and 503
// payloads become *Error; anything else is a generic error that the
// caller treats as a network/protocol failure.
func ParseHTTPError(statusCode int, body []byte) error {
	var parsed errorBody
	structured := json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != ""

	switch statusCode {
	case http.StatusUnauthorized:
		if structured {
			code := CodeInvalid
			if c := Code(parsed.Error.Code); validCode(c) {
				code = c
			}
			return &Error{Code: code, Message: parsed.Error.Message}
		}
		return &Error{Code: CodeRequired, Message: "authentication required"}

	case http.StatusServiceUnavailable:
		if structured {
			code := CodeServiceUnavailable
			if c := Code(parsed.Error.Code); validCode(c) {
				code = c
			}
			return &Error{Code: code, Message: parsed.Error.Message}
		}
		// A bare 503 is an ordinary availability problem, not an auth one.
		return fmt.Errorf("service unavailable (status %d)", statusCode)

	default:
		if structured {
			return fmt.Errorf("server error (status %d): %s", statusCode, parsed.Error.Message)
		}
		return fmt.Errorf("server returned status %d", statusCode)
	}
}

func validCode(c Code) bool {
	switch c {
	case CodeRequired, CodeInvalid, CodeServiceUnavailable, CodeServiceError:
		return true
	}
	return false
}
