package gist

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork indicates the remote could not be reached or the exchange
	// was cut short.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized indicates the credential was rejected.
	ErrUnauthorized = errors.New("credential rejected")

	// ErrMalformedResponse indicates a 2xx response whose body could not be
	// decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Code)
}

// Is matches ErrUnauthorized for 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}
