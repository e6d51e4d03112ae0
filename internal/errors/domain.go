package errors

import (
	"errors"
	"fmt"
)

// domain error taxonomy; repositories wrap these so the HTTP boundary can map them
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

// builds an error that maps to 400
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// builds an error that maps to 404
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// wraps a store failure so it maps to 500 while keeping the driver error inspectable
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
