package s3client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"

	"github.com/cloud37-dev/s3-operator/pkg/redact"
)

// Error classes. Callers branch on these with errors.Is and never inspect
// provider-specific codes themselves.
var (
	ErrNotFound        = errors.New("remote resource not found")
	ErrAlreadyExists   = errors.New("remote resource already exists")
	ErrThrottled       = errors.New("remote request throttled")
	ErrAuthFailed      = errors.New("remote authentication failed")
	ErrUnreachable     = errors.New("remote endpoint unreachable")
	ErrInvalidArgument = errors.New("remote rejected request as invalid")
	ErrIAMUnsupported  = errors.New("provider has no identity endpoint configured")
)

// ThrottledError carries the provider's retry hint when one was given.
type ThrottledError struct {
	RetryAfter time.Duration
	cause      error
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v: %v", ErrThrottled, e.cause)
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

func (e *ThrottledError) Unwrap() error { return e.cause }

// RetryAfterHint extracts the throttle hint from a classified error.
func RetryAfterHint(err error) (time.Duration, bool) {
	var te *ThrottledError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter, true
	}
	return 0, false
}

// retryAfterError decorates a raw SDK error with the Retry-After value the
// provider sent on the response. Classify folds it into ThrottledError.
type retryAfterError struct {
	retryAfter time.Duration
	cause      error
}

func (e *retryAfterError) Error() string { return e.cause.Error() }

func (e *retryAfterError) Unwrap() error { return e.cause }

// parseRetryAfter handles both forms of the header, delay seconds and an
// HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return 0
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

var notFoundCodes = map[string]bool{
	"NoSuchBucket":                         true,
	"NoSuchKey":                            true,
	"NoSuchEntity":                         true,
	"NoSuchBucketPolicy":                   true,
	"NoSuchLifecycleConfiguration":         true,
	"NoSuchCORSConfiguration":              true,
	"NoSuchTagSet":                         true,
	"NoSuchTagSetError":                    true,
	"NoSuchPublicAccessBlockConfiguration": true,
	"ServerSideEncryptionConfigurationNotFoundError": true,
	"NotFound":   true,
	"NoSuchUser": true,
	"404":        true,
}

var existsCodes = map[string]bool{
	"BucketAlreadyExists":     true,
	"BucketAlreadyOwnedByYou": true,
	"EntityAlreadyExists":     true,
}

var throttleCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"RequestThrottled":                       true,
	"TooManyRequestsException":               true,
	"SlowDown":                               true,
	"RequestLimitExceeded":                   true,
	"ProvisionedThroughputExceededException": true,
}

var authCodes = map[string]bool{
	"AccessDenied":          true,
	"AccessDeniedException": true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidClientTokenId":  true,
	"UnauthorizedAccess":    true,
	"InvalidSecurity":       true,
	"403":                   true,
}

var invalidCodes = map[string]bool{
	"InvalidArgument":         true,
	"InvalidBucketName":       true,
	"InvalidRequest":          true,
	"MalformedPolicy":         true,
	"MalformedPolicyDocument": true,
	"InvalidPolicyDocument":   true,
	"ValidationError":         true,
	"InvalidInput":            true,
	"LimitExceeded":           true,
}

// Classify maps a raw provider error onto exactly one error class. The
// original error stays in the chain; its message is redacted because SDK
// errors can echo request headers back.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var hint time.Duration
	var rae *retryAfterError
	if errors.As(err, &rae) {
		hint = rae.retryAfter
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		code := aerr.Code()
		switch {
		case notFoundCodes[code]:
			return fmt.Errorf("%w: %s", ErrNotFound, code)
		case existsCodes[code]:
			return fmt.Errorf("%w: %s", ErrAlreadyExists, code)
		case throttleCodes[code]:
			return &ThrottledError{RetryAfter: hint, cause: errors.New(code)}
		case authCodes[code]:
			return fmt.Errorf("%w: %s", ErrAuthFailed, code)
		case invalidCodes[code]:
			return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, code, redact.String(aerr.Message()))
		}

		var rf awserr.RequestFailure
		if errors.As(err, &rf) {
			switch rf.StatusCode() {
			case 404:
				return fmt.Errorf("%w: http 404", ErrNotFound)
			case 401, 403:
				return fmt.Errorf("%w: http %d", ErrAuthFailed, rf.StatusCode())
			case 409:
				return fmt.Errorf("%w: http 409", ErrAlreadyExists)
			case 429, 503:
				return &ThrottledError{RetryAfter: hint, cause: fmt.Errorf("http %d", rf.StatusCode())}
			case 400:
				return fmt.Errorf("%w: %s", ErrInvalidArgument, redact.String(rf.Message()))
			}
		}

		// RequestError wraps transport failures (conn refused, DNS, TLS)
		if code == "RequestError" || code == "RequestCanceled" {
			return fmt.Errorf("%w: %s", ErrUnreachable, redact.Error(aerr.OrigErr()))
		}
		return fmt.Errorf("remote error %s: %s", code, redact.String(aerr.Message()))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s", ErrUnreachable, redact.Error(netErr))
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %s", ErrUnreachable, redact.Error(urlErr))
	}

	return fmt.Errorf("remote error: %s", redact.Error(err))
}

// IsRetryable reports whether the classified error is worth retrying with
// backoff rather than surfacing as terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrThrottled) || errors.Is(err, ErrUnreachable)
}
