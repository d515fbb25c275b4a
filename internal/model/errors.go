package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedPlatform is returned by the source registry when a descriptor
// names a platform with no registered strategy.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FailureKind classifies why a single source produced no usable postings.
type FailureKind int

const (
	// FailureUnavailable: transport failed after exhausting retries.
	FailureUnavailable FailureKind = iota
	// FailureExtraction: the payload could not be turned into postings
	// (malformed page, LLM timeout or garbage response).
	FailureExtraction
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnavailable:
		return "unavailable"
	case FailureExtraction:
		return "extraction"
	}
	return "unknown"
}

// SourceError records a per-source failure. It is aggregated into the run
// result rather than aborting the run; one bad source never prevents results
// from the others.
type SourceError struct {
	Source string
	Kind   FailureKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s %s: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// PersistenceError marks a seen-store failure. It is fatal to the run: a run
// cannot safely classify new-vs-seen without the store, so it aborts rather
// than risk reporting everything as new.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("seen store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
