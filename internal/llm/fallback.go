package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// httpError is a non-2xx upstream response. 429 and 5xx are transient;
// 4xx message contents drive the fallback state machine.
type httpError struct {
	status     int
	message    string
	retryAfter time.Duration
}

func (e *httpError) Error() string {
	return fmt.Sprintf("model endpoint returned %d: %s", e.status, e.message)
}

// transportError is a network-level failure, always transient.
type transportError struct{ err error }

func (e *transportError) Error() string { return "model endpoint unreachable: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	switch e := err.(type) {
	case *transportError:
		return true
	case *httpError:
		return e.status == http.StatusTooManyRequests || e.status/100 == 5
	}
	return false
}

// fallbackState names which request-shape adjustment was applied last for
// one logical call. Transitions fire on specific HTTP status and message
// substrings; each adjustment is applied at most once, so the chain is
// bounded.
type fallbackState int

const (
	stateInitial fallbackState = iota
	stateRetriedAltTokenField
	stateRetriedNoFormat
	stateFellBackToAlternateAPI
)

// requestShape is the concrete request form derived from the accumulated
// adjustments.
type requestShape struct {
	useResponses bool
	tokenField   string // chat completions only
	dropFormat   bool
}

type fallback struct {
	state        fallbackState
	useResponses bool
	altToken     bool
	dropFormat   bool
	triedAltAPI  bool
}

func newFallback(useResponses bool) *fallback {
	return &fallback{useResponses: useResponses}
}

func (f *fallback) shape() requestShape {
	shape := requestShape{
		useResponses: f.useResponses,
		tokenField:   "max_tokens",
		dropFormat:   f.dropFormat,
	}
	if f.altToken {
		shape.tokenField = "max_completion_tokens"
	}
	if f.triedAltAPI {
		shape.useResponses = !f.useResponses
	}
	return shape
}

// advance inspects a request rejection and applies the next adjustment
// when a trigger matches. It returns false when no further fallback
// applies and the error must surface.
func (f *fallback) advance(status int, message string) bool {
	msg := strings.ToLower(message)

	if status == http.StatusBadRequest && !f.altToken && strings.Contains(msg, "max_tokens") {
		f.altToken = true
		f.state = stateRetriedAltTokenField
		return true
	}
	if status == http.StatusBadRequest && !f.dropFormat &&
		(strings.Contains(msg, "response_format") || strings.Contains(msg, "json_schema")) {
		f.dropFormat = true
		f.state = stateRetriedNoFormat
		return true
	}
	if !f.triedAltAPI && (status == http.StatusNotFound || strings.Contains(msg, "not supported")) {
		f.triedAltAPI = true
		f.state = stateFellBackToAlternateAPI
		return true
	}
	return false
}
