package reddit

import (
	"errors"
	"fmt"
	"net/http"
)

// Access failures the platform reports for a single community. These are
// the only errors the crawl treats as recoverable.
var (
	ErrForbidden  = errors.New("forbidden")
	ErrRedirect   = errors.New("redirected")
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// AccessKind enumerates the recoverable access failures
type AccessKind int

const (
	Forbidden AccessKind = iota
	Redirect
	BadRequest
	NotFound
)

// String returns a human-readable name for the kind
func (k AccessKind) String() string {
	switch k {
	case Forbidden:
		return "forbidden"
	case Redirect:
		return "redirect"
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// sentinel returns the package-level error matching this kind
func (k AccessKind) sentinel() error {
	switch k {
	case Forbidden:
		return ErrForbidden
	case Redirect:
		return ErrRedirect
	case BadRequest:
		return ErrBadRequest
	case NotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// AccessError is returned when the platform refuses to describe a community
type AccessError struct {
	Kind       AccessKind
	Community  string
	StatusCode int
	Location   string
}

func (e *AccessError) Error() string {
	msg := fmt.Sprintf("received %d HTTP response", e.StatusCode)
	if e.Kind == Redirect && e.Location != "" {
		msg = fmt.Sprintf("redirect to %s", e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), msg)
}

// Is lets errors.Is match an AccessError against the kind sentinels
func (e *AccessError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsAccessError reports whether err carries one of the four recoverable kinds
func IsAccessError(err error) bool {
	var accessErr *AccessError
	return errors.As(err, &accessErr)
}

// StatusError is returned for responses outside the access failure set
type StatusError struct {
	Community  string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response for %s: %d %s",
		e.Community, e.StatusCode, http.StatusText(e.StatusCode))
}

// classifyStatus maps an HTTP status to an error, nil for 2xx
func classifyStatus(community string, status int, location string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusForbidden:
		return &AccessError{Kind: Forbidden, Community: community, StatusCode: status}
	case status >= 300 && status < 400:
		return &AccessError{Kind: Redirect, Community: community, StatusCode: status, Location: location}
	case status == http.StatusBadRequest:
		return &AccessError{Kind: BadRequest, Community: community, StatusCode: status}
	case status == http.StatusNotFound:
		return &AccessError{Kind: NotFound, Community: community, StatusCode: status}
	default:
		return &StatusError{Community: community, StatusCode: status}
	}
}
