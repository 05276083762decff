// Package errors defines the sentinel errors returned by the index and the
// IndexError wrapper carrying the failed operation and document.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyIndexed     = errors.New("document already indexed")
	ErrNoIndexableContent = errors.New("no indexable content")
)

// IndexError records the operation and document an error occurred on.
type IndexError struct {
	Op    string
	DocID string
	Err   error
}

func (e *IndexError) Error() string {
	if e.DocID == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.DocID, e.Err.Error())
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func New(op string, docID string, sentinel error) *IndexError {
	return &IndexError{
		Op:    op,
		DocID: docID,
		Err:   sentinel,
	}
}

// Newf wraps sentinel with a formatted detail message.
func Newf(op string, docID string, sentinel error, format string, args ...any) *IndexError {
	return &IndexError{
		Op:    op,
		DocID: docID,
		Err:   fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}

// Reason returns a short label for err suitable for a metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrAlreadyIndexed):
		return "already_indexed"
	case errors.Is(err, ErrNoIndexableContent):
		return "no_content"
	default:
		return "other"
	}
}
