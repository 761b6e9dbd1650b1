// Package errors defines the error taxonomy for slot reconciliation.
// Errors fall into three classes: validation errors (bad desired
// configuration, surfaced before any remote call), not-found conditions
// (fatal for the parent web app, expected for an absent slot), and remote
// faults (any management-plane call failure).
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// ErrValidation indicates contradictory or unsupported desired configuration.
// Validation errors are fatal and are raised before any remote call is made.
var ErrValidation = errors.New("invalid slot configuration")

// ErrNotFound indicates a remote resource does not exist. For the parent web
// app this is fatal; for the slot itself it selects the creation path.
var ErrNotFound = errors.New("resource not found")

// ErrRemote indicates a management-plane call failed. The wrapped message
// carries the operation name, the slot identity, and the provider error
// code and request id when available.
var ErrRemote = errors.New("remote operation failed")

// NewValidation returns a validation error with a formatted message.
func NewValidation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewNotFound returns a not-found error for the named resource.
func NewNotFound(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

// WrapRemote wraps a gateway call failure with the operation name and the
// identity of the slot it targeted. Provider error codes and request ids
// from ARM responses are folded into the message so operators can correlate
// failures with Azure activity logs.
func WrapRemote(operation, target string, err error) error {
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		requestID := ""
		if respErr.RawResponse != nil {
			requestID = respErr.RawResponse.Header.Get("x-ms-request-id")
		}
		if requestID != "" {
			return fmt.Errorf("%w: %s for %s: code=%s request-id=%s: %w",
				ErrRemote, operation, target, respErr.ErrorCode, requestID, err)
		}
		return fmt.Errorf("%w: %s for %s: code=%s: %w",
			ErrRemote, operation, target, respErr.ErrorCode, err)
	}

	return fmt.Errorf("%w: %s for %s: %w", ErrRemote, operation, target, err)
}

// IsValidation checks whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks whether err represents a missing remote resource,
// either via the sentinel or via an ARM 404 response.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotFound) {
		return true
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsRemote checks whether err is a remote fault.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote)
}

// IsThrottled checks whether err is an ARM throttling response.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusTooManyRequests
	}

	return strings.Contains(strings.ToLower(err.Error()), "too many requests")
}

// ShouldRequeue determines whether a reconciliation error should trigger a
// requeue and after what delay. Validation errors and missing parents wait
// for a spec change; throttling backs off longer than other remote faults.
func ShouldRequeue(err error) (bool, time.Duration) {
	if err == nil {
		return false, 0
	}

	if IsValidation(err) || IsNotFound(err) {
		return false, 0
	}

	if IsThrottled(err) {
		return true, 60 * time.Second
	}

	if IsRemote(err) {
		return true, 15 * time.Second
	}

	// Unknown errors requeue with controller-runtime's default backoff.
	return true, 0
}
