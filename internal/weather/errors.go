package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrCityNotFound is returned when geocoding yields zero matches
	// for the requested city name.
	ErrCityNotFound = errors.New("city not found")
)

// StatusError reports a non-success HTTP status from an upstream
// endpoint.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d", e.Endpoint, e.Code)
}

// IsNetworkError reports whether err represents an upstream failure:
// a non-success status, a timeout, or a transport-level error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
