package samgov

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrorKind classifies a failed search request.
type ErrorKind int

const (
	// KindRateLimited means upstream signalled quota exhaustion (HTTP 429).
	// Callers should pause and resume on a later run rather than abort.
	KindRateLimited ErrorKind = iota + 1
	// KindTransport is a connection or timeout failure.
	KindTransport
	// KindUpstream is any other non-2xx response.
	KindUpstream
	// KindDecode means the body did not match the expected schema.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by Client for every failed request. The message and any
// wrapped *url.Error never contain the API key.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return fmt.Sprintf("SAM.gov API rate limit exceeded (%d)", e.StatusCode)
	case KindTransport:
		return fmt.Sprintf("failed to connect to SAM.gov API: %v", e.Err)
	case KindUpstream:
		return fmt.Sprintf("SAM.gov API returned %d: %s", e.StatusCode, e.Body)
	case KindDecode:
		return fmt.Sprintf("failed to parse SAM.gov API response: %v", e.Err)
	default:
		return fmt.Sprintf("SAM.gov API error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is, or wraps, a rate-limit failure.
func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRateLimited
}

// KindOf returns the classification of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

const redacted = "REDACTED"

// redactor scrubs one secret from strings and errors.
type redactor string

func (r redactor) scrub(s string) string {
	if r == "" {
		return s
	}
	s = strings.ReplaceAll(s, string(r), redacted)
	// The key may also appear query-escaped inside a URL.
	if esc := url.QueryEscape(string(r)); esc != string(r) {
		s = strings.ReplaceAll(s, esc, redacted)
	}
	return s
}

// scrubErr rewrites err in place where it can (the URL of a *url.Error) and
// otherwise replaces it with a redacted copy of its message.
func (r redactor) scrubErr(err error) error {
	if err == nil || r == "" {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = r.scrub(ue.URL)
		if ue.Err != nil && strings.Contains(ue.Err.Error(), string(r)) {
			ue.Err = errors.New(r.scrub(ue.Err.Error()))
		}
		return err
	}
	if strings.Contains(err.Error(), string(r)) {
		return errors.New(r.scrub(err.Error()))
	}
	return err
}
