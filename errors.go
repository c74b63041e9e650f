package pinevoice

import (
	"encoding/json"
	"fmt"
)

// ErrorKind groups API errors into the categories callers branch on.
type ErrorKind string

const (
	// ErrorKindAuth covers missing, invalid or expired credentials (HTTP 401).
	ErrorKindAuth ErrorKind = "authentication"

	// ErrorKindRateLimit covers rate limiting (HTTP 429).
	ErrorKindRateLimit ErrorKind = "rate_limit"

	// ErrorKindCall covers domain-specific call rejections such as
	// INVALID_PHONE or DND_BLOCKED.
	ErrorKindCall ErrorKind = "call"

	// ErrorKindAPI covers any other non-2xx response or transport failure.
	ErrorKindAPI ErrorKind = "api"

	// ErrorKindMalformed covers 2xx responses missing required fields.
	ErrorKindMalformed ErrorKind = "malformed_response"
)

// Error represents a Pine Voice API error.
type Error struct {
	// Kind is the error category.
	Kind ErrorKind

	// Code is the machine-readable error code from the gateway,
	// e.g. "TOKEN_EXPIRED" or "INVALID_PHONE".
	Code string

	// Message is a human-readable description.
	Message string

	// Status is the HTTP status code, or 0 for non-HTTP failures.
	Status int

	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pinevoice: %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("pinevoice: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, code, message string, status int, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Status: status, Cause: cause}
}

// callErrorCodes is the fixed set of gateway codes classified as
// [ErrorKindCall].
var callErrorCodes = map[string]struct{}{
	"INVALID_PHONE":         {},
	"DND_BLOCKED":           {},
	"POLICY_VIOLATION":      {},
	"INSUFFICIENT_DETAIL":   {},
	"SUBSCRIPTION_REQUIRED": {},
	"INSUFFICIENT_CREDITS":  {},
	"ACCESS_DENIED":         {},
	"NOT_FOUND":             {},
}

// wireError is the error envelope the gateway returns on non-2xx responses.
type wireError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyError maps a non-2xx response to a typed error. It never returns
// nil. The rate-limit status is fixed at 429 regardless of the response
// status.
func classifyError(status int, body []byte) *Error {
	code := "UNKNOWN"
	message := fmt.Sprintf("HTTP %d", status)
	if len(body) > 0 {
		var we wireError
		if err := json.Unmarshal(body, &we); err == nil {
			if we.Error.Code != "" {
				code = we.Error.Code
			}
			if we.Error.Message != "" {
				message = we.Error.Message
			}
		}
	}

	switch {
	case status == 401 || code == "TOKEN_EXPIRED" || code == "AUTH_REQUIRED":
		return newError(ErrorKindAuth, code, message, status, nil)
	case status == 429 || code == "RATE_LIMITED":
		return newError(ErrorKindRateLimit, code, message, 429, nil)
	default:
		if _, ok := callErrorCodes[code]; ok {
			return newError(ErrorKindCall, code, message, status, nil)
		}
		return newError(ErrorKindAPI, code, message, status, nil)
	}
}

// errEmptyResponse reports a 2xx response whose body is empty or unusable.
func errEmptyResponse(cause error) *Error {
	return newError(ErrorKindMalformed, "EMPTY_RESPONSE",
		"server returned an empty or invalid response", 200, cause)
}
