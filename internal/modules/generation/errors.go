package generation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a model provider failure by its transport status so
// callers never have to sniff error messages.
type ErrorKind int

const (
	// KindFatal covers auth errors, bad requests and anything else that a
	// retry will not fix.
	KindFatal ErrorKind = iota
	// KindTransient covers 5xx responses and network failures.
	KindTransient
	// KindRateLimited covers 429 responses.
	KindRateLimited
)

// ClientError is a failure returned by the model provider.
type ClientError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("model client error (status %d): %v", e.Status, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindTransient
	default:
		return KindFatal
	}
}

// ValidationError reports a bad generation request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseError reports an unusable model response for one batch.
type ParseError struct {
	Batch int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("batch %d: unparseable model response: %v", e.Batch, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RateLimitError means every batch failed with a provider rate limit.
type RateLimitError struct {
	Batches int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("generation rate limited: all %d batches failed", e.Batches)
}

// TotalFailureError means every batch failed for non-rate-limit reasons.
type TotalFailureError struct {
	Batches int
	Last    error
}

func (e *TotalFailureError) Error() string {
	return fmt.Sprintf("generation failed: all %d batches failed, last error: %v", e.Batches, e.Last)
}

func (e *TotalFailureError) Unwrap() error { return e.Last }

var errNoProvider = errors.New("no enabled ai provider configured")

// IsRateLimited reports whether err is a rate-limited client error.
func IsRateLimited(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == KindRateLimited
}
