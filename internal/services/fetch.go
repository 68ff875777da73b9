package services

import (
	"context"
	"errors"
	"log/slog"

	"consolidation-route-service/internal/domain"
)

// fetchResult holds the outcome of a best-effort provider call.
// ok is false when the call failed in a way the caller may ignore.
type fetchResult[T any] struct {
	value T
	ok    bool
}

// fetch runs fn and folds degradable failures into an omitted result.
// Other errors are returned.
func fetch[T any](ctx context.Context, logger *slog.Logger, what string, fn func() (T, error)) (fetchResult[T], error) {
	v, err := fn()
	if err == nil {
		return fetchResult[T]{value: v, ok: true}, nil
	}
	if degradable(err) {
		logger.WarnContext(ctx, "routing data omitted", "what", what, "error", err)
		return fetchResult[T]{}, nil
	}
	return fetchResult[T]{}, err
}

// degradable reports whether a provider failure only costs routing metadata.
func degradable(err error) bool {
	return errors.Is(err, domain.ErrProvider) ||
		errors.Is(err, domain.ErrConfiguration) ||
		errors.Is(err, domain.ErrInvalidInput)
}
