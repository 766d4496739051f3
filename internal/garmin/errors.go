package garmin

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn is returned by data getters called before a successful Login.
var ErrNotLoggedIn = errors.New("garmin: session not logged in")

// AuthenticationError reports that Garmin SSO rejected the supplied credentials.
// Its message is the vendor-facing reason and is safe to show to the caller.
type AuthenticationError struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("sso returned http %d", e.StatusCode)
}

// IsAuthenticationError reports whether err wraps an *AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
