package churchapi

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the API has no record for the requested key
var ErrNotFound = errors.New("church API: record not found")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("church API rate limit exceeded")

// ServerError represents a 5xx error from the church API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("church API server error: HTTP %d", e.StatusCode)
}
