package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when an operation lacks the coordinates or
// identifiers it needs (too few points, a warehouse without lat/lon, ...).
var ErrInvalidInput = errors.New("invalid input")

// ErrConfiguration is returned by the routing provider when credentials are missing.
var ErrConfiguration = errors.New("routing provider not configured")

// ErrProvider is the category shared by all routing provider failures.
var ErrProvider = errors.New("routing provider error")

// ProviderError describes a failed call to the routing provider.
// StatusCode is zero for transport failures.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: provider returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProvider) match any ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }
