package xclient

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse marks a response whose body was absent or unparseable.
// Distinct from a well-formed response with zero posts, which is not an error.
var ErrEmptyResponse = errors.New("empty or unparseable response body")

// RateLimitedError is remote throttling (HTTP 429).
type RateLimitedError struct {
	// ResetAt is a human-readable reset time from the rate-limit header,
	// or "unknown" when the header was missing.
	ResetAt string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (status 429): the free tier allows 100 reads/month; window resets at %s", e.ResetAt)
}

// APIError is an application error reported by the API in its errors list.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return "x api error: " + strings.Join(e.Messages, "; ")
}

// IsRateLimited matches both the typed error and transport errors whose
// message encodes a 429 status.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "status 429")
}
