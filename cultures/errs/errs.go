// Package errs holds the error kinds shared by the asset decoders.
//
// Every fatal decode error matches exactly one of ErrStructural, ErrMissing
// or ErrOutOfRange with errors.Is. Decoders never downgrade these; the caller
// decides whether to drop one asset or the whole load.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStructural = errors.New("structural error")
	ErrMissing    = errors.New("missing element")
	ErrOutOfRange = errors.New("out of range")
)

// Structuralf formats a structural error such as a bad magic or a truncated table.
func Structuralf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}

// Truncated wraps a short read inside a declared structure as structural.
func Truncated(what string, err error) error {
	return fmt.Errorf("%w: %s truncated: %w", ErrStructural, what, err)
}

// MissingError names mandatory elements that were absent.
type MissingError struct {
	What  string
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s absent: %s", e.What, strings.Join(e.Names, ", "))
}

func (e *MissingError) Is(target error) bool { return target == ErrMissing }

// RangeError reports a palette index that the palette cannot resolve.
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("palette index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }
