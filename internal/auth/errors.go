package auth

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ErrorType categorizes a failure to use the Gemini API key.
type ErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network or server-side failure.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unclassified failure.
	ErrTypeUnknown
)

var errorTypeNames = map[ErrorType]string{
	ErrTypeNoKey:         "no_key",
	ErrTypeInvalidKey:    "invalid",
	ErrTypeNetworkError:  "network_error",
	ErrTypeQuotaExceeded: "quota",
	ErrTypeUnknown:       "unknown",
}

// String returns the metric/log label of t.
func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Persistent reports whether every further call with the same key will fail
// the same way, so a batch should stop calling the service.
func (t ErrorType) Persistent() bool {
	return t == ErrTypeNoKey || t == ErrTypeInvalidKey || t == ErrTypeQuotaExceeded
}

// ValidationError is a classified API key failure.
type ValidationError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// statusTypes maps HTTP status codes returned by the API.
var statusTypes = map[int]ErrorType{
	400: ErrTypeInvalidKey,
	401: ErrTypeInvalidKey,
	403: ErrTypeInvalidKey,
	429: ErrTypeQuotaExceeded,
	500: ErrTypeNetworkError,
	502: ErrTypeNetworkError,
	503: ErrTypeNetworkError,
	504: ErrTypeNetworkError,
}

// messageRules classify errors that carry no status code, first match wins.
var messageRules = []struct {
	typ     ErrorType
	needles []string
}{
	{ErrTypeInvalidKey, []string{"api key not valid", "invalid api key", "api_key_invalid", "permission denied"}},
	{ErrTypeQuotaExceeded, []string{"quota", "resource exhausted", "resource_exhausted", "rate limit"}},
	{ErrTypeNetworkError, []string{"connection", "network", "timeout", "deadline exceeded", "dial", "no such host", "unreachable"}},
}

var typeMessages = map[ErrorType]string{
	ErrTypeInvalidKey:    "API key is invalid, expired, or lacks permissions",
	ErrTypeQuotaExceeded: "API quota exceeded or rate limited",
	ErrTypeNetworkError:  "Gemini API unreachable or failing",
	ErrTypeUnknown:       "Gemini API call failed",
}

// Classify turns an error from a Gemini call into a ValidationError.
// An existing ValidationError is returned as is; nil stays nil.
func Classify(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	typ, ok := statusType(err)
	if !ok {
		typ = messageType(err.Error())
	}
	return &ValidationError{Type: typ, Message: typeMessages[typ], Err: err}
}

// statusType reads the status code of a genai.APIError, which the SDK
// returns by value and callers sometimes wrap by pointer.
func statusType(err error) (ErrorType, bool) {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return 0, false
	}
	if typ, ok := statusTypes[code]; ok {
		return typ, true
	}
	return ErrTypeUnknown, true
}

func messageType(msg string) ErrorType {
	msg = strings.ToLower(msg)
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.typ
			}
		}
	}
	return ErrTypeUnknown
}
