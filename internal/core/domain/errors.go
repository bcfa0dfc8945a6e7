package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrVisionUnavailable = errors.New("vision model unavailable")
	ErrIndexNotFound     = errors.New("vector index not found")
	ErrCorruptIndex      = errors.New("vector index unreadable")
	ErrNoDocuments       = errors.New("no documents loaded")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
