package metrics

import (
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Error type constants for metrics labels.
const (
	ErrorTypeNotFound      = "not_found"
	ErrorTypeAlreadyExists = "already_exists"
	ErrorTypeConflict      = "conflict"
	ErrorTypeForbidden     = "forbidden"
	ErrorTypeInvalid       = "invalid"
	ErrorTypeTimeout       = "timeout"
	ErrorTypeServerError   = "server_error"
	ErrorTypeNetwork       = "network"
	ErrorTypeUnknown       = "unknown"
)

// ClassifyAPIError classifies a Kubernetes API error for metrics labeling.
// Returns an empty string for nil errors.
func ClassifyAPIError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case apierrors.IsNotFound(err):
		return ErrorTypeNotFound
	case apierrors.IsAlreadyExists(err):
		return ErrorTypeAlreadyExists
	case apierrors.IsConflict(err):
		return ErrorTypeConflict
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return ErrorTypeForbidden
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		return ErrorTypeInvalid
	case apierrors.IsTimeout(err) || apierrors.IsServerTimeout(err):
		return ErrorTypeTimeout
	case apierrors.IsInternalError(err) || apierrors.IsServiceUnavailable(err) || apierrors.IsTooManyRequests(err):
		return ErrorTypeServerError
	}

	return classifyByErrorMessage(err.Error())
}

func classifyByErrorMessage(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "timeout") || strings.Contains(errLower, "deadline"):
		return ErrorTypeTimeout
	case strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "no such host"):
		return ErrorTypeNetwork
	default:
		return ErrorTypeUnknown
	}
}
