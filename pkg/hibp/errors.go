package hibp

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidHash       = errors.New("input is not a valid SHA1 Hexadecimal hash")
	ErrInvalidPrefix     = errors.New("range prefix must be 5 hexadecimal characters")
	ErrUnreachable       = errors.New("pwned passwords API is unreachable")
	ErrMalformedResponse = errors.New("malformed range response")
)

// APIError is returned when the range API answers with anything other than 200.
type APIError struct {
	Prefix     string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error fetching range %s: status %d %s, check API and try again",
		e.Prefix, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the same request could succeed later.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTemporary reports whether err is a lookup failure worth retrying later: the API was
// unreachable or answered with a throttling or server error.
func IsTemporary(err error) bool {
	if errors.Is(err, ErrUnreachable) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	return false
}
