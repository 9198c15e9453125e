package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ProviderErrorType categorizes a failure returned by the AI provider.
type ProviderErrorType int

const (
	// ErrTypeInvalidCredentials indicates the service account was rejected.
	ErrTypeInvalidCredentials ProviderErrorType = iota
	// ErrTypeNetworkError indicates a connectivity problem or upstream outage.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the project quota or rate limit was hit.
	ErrTypeQuotaExceeded
	// ErrTypeTimeout indicates the call did not finish within its deadline.
	ErrTypeTimeout
	// ErrTypeBadRequest indicates the provider rejected the request content.
	ErrTypeBadRequest
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown
)

// String returns the label used for log fields and metric dimensions.
func (t ProviderErrorType) String() string {
	switch t {
	case ErrTypeInvalidCredentials:
		return "invalid_credentials"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// ClassifyProviderError maps an error from a provider call onto a
// ProviderErrorType. It never changes the error itself; callers still
// surface err.Error() to the client.
func ClassifyProviderError(err error) ProviderErrorType {
	if err == nil {
		return ErrTypeUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(apiErrPtr.Code)
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "permission denied") ||
		strings.Contains(errLower, "unauthenticated") ||
		strings.Contains(errLower, "invalid_grant") ||
		strings.Contains(errLower, "private key"):
		return ErrTypeInvalidCredentials

	case strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "rate limit"):
		return ErrTypeQuotaExceeded

	case strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "deadline"):
		return ErrTypeTimeout

	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "network") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable"):
		return ErrTypeNetworkError

	default:
		return ErrTypeUnknown
	}
}

func classifyAPIError(code int) ProviderErrorType {
	switch code {
	case 400, 404:
		return ErrTypeBadRequest
	case 401, 403:
		return ErrTypeInvalidCredentials
	case 408, 504:
		return ErrTypeTimeout
	case 429:
		return ErrTypeQuotaExceeded
	case 500, 502, 503:
		return ErrTypeNetworkError
	default:
		return ErrTypeUnknown
	}
}
