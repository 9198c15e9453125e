package gateway

import (
	"errors"
	"net/http"

	"github.com/fpang/genai-gateway/internal/chat"
)

// Kind categorizes a gateway failure. Every Kind maps to one HTTP status.
type Kind int

const (
	// KindMethodNotAllowed is a request with a verb other than POST or OPTIONS.
	KindMethodNotAllowed Kind = iota
	// KindConfiguration is a missing or malformed server-side credential.
	KindConfiguration
	// KindInvalidBody is a request body that is not a JSON object or is too large.
	KindInvalidBody
	// KindInvalidStep is an unrecognized step discriminator.
	KindInvalidStep
	// KindInvalidPayload is a payload missing a required field.
	KindInvalidPayload
	// KindProviderResponse is a provider reply without the expected content.
	KindProviderResponse
	// KindProviderCall is any failure of the provider call itself.
	KindProviderCall
	// KindNotFound is a request for a path other than the generate endpoint.
	KindNotFound
)

// String returns the label used in logs and metric dimensions.
func (k Kind) String() string {
	switch k {
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConfiguration:
		return "configuration"
	case KindInvalidBody:
		return "invalid_body"
	case KindInvalidStep:
		return "invalid_step"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindProviderResponse:
		return "provider_response"
	case KindProviderCall:
		return "provider_call"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindInvalidBody, KindInvalidStep, KindInvalidPayload:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure that is returned to the caller as an error envelope.
// Message is exactly what the client sees.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client-visible messages.
const (
	msgMethodNotAllowed   = "Method Not Allowed"
	msgMissingCredentials = "Server configuration error. Missing API credentials."
	msgInvalidKeyFormat   = "Server configuration error. Invalid service account key format."
	msgInvalidStep        = "Invalid step provided"
	msgInvalidBody        = "Invalid request body"
	msgNotFound           = "Not Found"
	apiErrorPrefix        = "API Error: "
)

var (
	errMethodNotAllowed = &Error{Kind: KindMethodNotAllowed, Message: msgMethodNotAllowed}
	errNotFound         = &Error{Kind: KindNotFound, Message: msgNotFound}
)

func invalidPayload(reason string) *Error {
	return &Error{Kind: KindInvalidPayload, Message: "Invalid payload: " + reason}
}

// providerError wraps a failure from the provider. Missing-content failures
// from extraction are response errors; everything else is a call error.
func providerError(err error) *Error {
	kind := KindProviderCall
	if errors.Is(err, chat.ErrNoImage) || errors.Is(err, chat.ErrNoText) || errors.Is(err, chat.ErrNoCandidates) {
		kind = KindProviderResponse
	}
	return &Error{Kind: kind, Message: apiErrorPrefix + err.Error(), Err: err}
}
