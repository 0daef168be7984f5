package fieldsort

import (
	"errors"
	"fmt"

	"github.com/hupe1980/fieldsort/internal/sorter"
	"github.com/hupe1980/fieldsort/strategy"
)

var (
	// ErrInvalidArgument is the class of errors caused by bad caller input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidLimit is returned when a sort limit is below 1.
	ErrInvalidLimit = fmt.Errorf("%w: limit must be 1 or greater", ErrInvalidArgument)

	// ErrUnknownStrategy is returned for strategy names or values that do not
	// identify a sort algorithm usable for the requested direction.
	ErrUnknownStrategy = fmt.Errorf("%w: unknown sort strategy", ErrInvalidArgument)

	// ErrInvalidValue is returned when a value cannot be ordered (NaN).
	ErrInvalidValue = fmt.Errorf("%w: value is not orderable", ErrInvalidArgument)

	// ErrInvalidUsage marks programming errors, such as forcing NBest without
	// a limit.
	ErrInvalidUsage = sorter.ErrInvalidUsage

	// ErrNBestWithoutLimit is returned when NBest is forced without a limit.
	ErrNBestWithoutLimit = sorter.ErrNBestWithoutLimit

	// ErrFieldExists is returned when registering a field name twice.
	ErrFieldExists = errors.New("field already registered")

	// ErrFieldNotFound is returned when a catalog has no field of that name.
	ErrFieldNotFound = errors.New("field not found")

	// ErrCorruptSnapshot is returned when snapshot bytes cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// ErrLimitOutOfRange reports the rejected limit.
//
// It satisfies errors.Is(err, ErrInvalidLimit).
type ErrLimitOutOfRange struct {
	Limit int
}

func (e *ErrLimitOutOfRange) Error() string {
	return fmt.Sprintf("limit must be 1 or greater, got %d", e.Limit)
}

func (e *ErrLimitOutOfRange) Unwrap() error { return ErrInvalidLimit }

// ErrUnknownStrategyName reports a strategy that could not be used.
//
// It satisfies errors.Is(err, ErrUnknownStrategy). The original underlying
// error (if any) can be accessed via errors.Unwrap on the returned chain.
type ErrUnknownStrategyName struct {
	Name    string
	Reverse bool
	cause   error
}

func (e *ErrUnknownStrategyName) Error() string {
	if e.Reverse {
		return fmt.Sprintf("unknown sort strategy for descending sort: %s", e.Name)
	}
	return fmt.Sprintf("unknown sort strategy: %s", e.Name)
}

func (e *ErrUnknownStrategyName) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrUnknownStrategy}
	}
	return []error{ErrUnknownStrategy, e.cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sorter.ErrUnsupportedDirection) {
		return &ErrUnknownStrategyName{Name: strategy.ScanForward.String(), Reverse: true, cause: err}
	}

	return err
}
