package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange means a position outside [0, Len) was requested. It signals
	// a filter stage and the store disagreeing about the row count.
	ErrOutOfRange = errors.New("position out of range")

	// ErrUnknownColumn is returned for a column identifier the accessor does not
	// serve, such as asking for strings from a numeric column.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrStoreUnavailable wraps I/O failures of a disk-backed store.
	ErrStoreUnavailable = errors.New("column store unavailable")

	// ErrColumnMismatch is returned when the columns of a store differ in length.
	ErrColumnMismatch = errors.New("column lengths differ")
)

// OutOfRangeError reports the column and position of a bad lookup.
type OutOfRangeError struct {
	Column Column
	Pos    int
	Len    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: position %d out of range [0, %d)", e.Column, e.Pos, e.Len)
}

// Is makes errors.Is(err, ErrOutOfRange) hold.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func checkPos(col Column, pos, n int) error {
	if pos < 0 || pos >= n {
		return &OutOfRangeError{Column: col, Pos: pos, Len: n}
	}
	return nil
}
