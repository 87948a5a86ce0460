package agentcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// Sentinel errors used by the mock client and for wrapping. The AWS
// client surfaces the underlying API errors; the classifiers below
// recognize both.
var (
	ErrNotFound = errors.New("resource not found")
	ErrInUse    = errors.New("resource in use by a dependent")
)

// NotFoundError carries the type and name of the missing resource.
type NotFoundError struct {
	Type string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: resource not found", e.Type, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether the error means the resource does not
// exist. Deletion treats this as success: an item removed concurrently
// by another process is not a failure.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return hasAPIErrorCode(err,
		"ResourceNotFoundException",
		"NoSuchEntity",
		"RepositoryNotFoundException",
		"NotFoundException",
	)
}

// IsInUse reports whether deletion was blocked by a live dependent.
// These are eligible for the orchestrator's whole-pass retry.
func IsInUse(err error) bool {
	if errors.Is(err, ErrInUse) {
		return true
	}
	return hasAPIErrorCode(err,
		"ConflictException",
		"ResourceInUseException",
		"DeleteConflict",
		"DeleteConflictException",
	)
}

// IsThrottled reports rate limiting or temporary unavailability. These
// are retried automatically within budget and never surfaced unless the
// budget is exhausted.
func IsThrottled(err error) bool {
	if hasAPIErrorCode(err,
		"ThrottlingException",
		"TooManyRequestsException",
		"Throttling",
		"ServiceUnavailableException",
		"InternalServerException",
	) {
		return true
	}
	// Some transports only surface a message.
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "throttl")
}

// IsRetryable reports whether the error is transient: worth another
// attempt rather than escalation.
func IsRetryable(err error) bool {
	return IsThrottled(err) || IsInUse(err)
}

func hasAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
