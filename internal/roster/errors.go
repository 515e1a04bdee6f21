package roster

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrDateParse        = errors.New("unparseable date")
	ErrIncompleteRecord = errors.New("incomplete record")
	ErrEmptyInput       = errors.New("roster has no records")
)

// RowError pins a pipeline failure to one record and column.
type RowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("record %d, column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("record %d, column %q, value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// IsInputError reports whether err is one of the roster's input errors, as
// opposed to an unexpected failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrDateParse) ||
		errors.Is(err, ErrIncompleteRecord) ||
		errors.Is(err, ErrEmptyInput)
}
