// Package apperr defines the error kinds surfaced to API and CLI callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who caused it.
type Kind string

const (
	KindInvalidURL         Kind = "invalid_url"
	KindMissingField       Kind = "missing_field"
	KindUnknownAction      Kind = "unknown_action"
	KindPreconditionNotMet Kind = "precondition_not_met"
	KindInvalidRequest     Kind = "invalid_request"
	KindNotFound           Kind = "not_found"
	KindProviderError      Kind = "provider_error"
	KindMalformedResponse  Kind = "malformed_response"
	KindMissingCredential  Kind = "missing_credential"
)

// Error is a classified application error. Message is what the caller sees.
type Error struct {
	Kind    Kind
	Message string

	// Provider, StatusCode and Body are set for KindProviderError.
	Provider   string
	StatusCode int
	Body       string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to the status code the API responds with.
func (e *Error) HTTPStatus() int {
	return StatusForKind(e.Kind)
}

// StatusForKind returns the HTTP status for a kind. Unknown kinds are 500.
func StatusForKind(k Kind) int {
	switch k {
	case KindInvalidURL, KindMissingField, KindUnknownAction, KindPreconditionNotMet, KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// InvalidURL reports a url that is not an absolute http(s) URL.
func InvalidURL(raw string) *Error {
	return &Error{Kind: KindInvalidURL, Message: fmt.Sprintf("invalid url: %q must be an absolute http(s) URL", raw)}
}

// MissingField reports a required payload field that was absent or blank.
func MissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Message: field + " is required"}
}

// UnknownAction reports an action outside the dispatcher's closed set.
func UnknownAction() *Error {
	return &Error{Kind: KindUnknownAction, Message: "Unknown action"}
}

// PreconditionNotMet reports an operation started from the wrong state.
func PreconditionNotMet(msg string) *Error {
	return &Error{Kind: KindPreconditionNotMet, Message: msg}
}

// InvalidRequest reports a body that could not be decoded.
func InvalidRequest(msg string, err error) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg, Err: err}
}

// NotFound reports a missing resource such as an expired session.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Provider reports a non-success response from an upstream provider.
func Provider(provider string, statusCode int, body string) *Error {
	msg := fmt.Sprintf("%s API error (%d): %s", provider, statusCode, body)
	if statusCode == 0 {
		msg = fmt.Sprintf("%s API error: %s", provider, body)
	}
	return &Error{
		Kind:       KindProviderError,
		Message:    msg,
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
	}
}

// MalformedResponse reports a provider body that did not have the expected shape.
func MalformedResponse(provider string, err error) *Error {
	msg := provider + ": malformed response"
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Kind: KindMalformedResponse, Message: msg, Provider: provider, Err: err}
}

// MissingCredential reports an unset provider key.
func MissingCredential(name string) *Error {
	return &Error{Kind: KindMissingCredential, Message: name + " is not set"}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains an *Error of kind k.
func IsKind(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}

// HTTPStatus returns the status for any error: classified errors map by
// kind, everything else is 500.
func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		return ae.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing message. For classified errors that is
// the classified message without wrap prefixes.
func Message(err error) string {
	if ae, ok := As(err); ok {
		return ae.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
