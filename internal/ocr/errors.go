package ocr

import (
	"errors"
	"fmt"
)

// ErrEmptySource is returned when there is nothing to process.
var ErrEmptySource = errors.New("source contains no images")

// Kind classifies why a single file failed.
type Kind int

const (
	KindNone Kind = iota
	KindFileAccess
	KindService
	KindStatus
	KindDecode
	KindView
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindFileAccess:
		return "file access"
	case KindService:
		return "service call"
	case KindStatus:
		return "bad status"
	case KindDecode:
		return "image decode"
	case KindView:
		return "display"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DetectError wraps a failure with its kind and the step that produced it.
type DetectError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *DetectError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *DetectError) Unwrap() error { return e.Err }

// StatusError reports a response whose status code was not StatusOK.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API call failed with status code: %d", e.Code)
}

// Errorf builds a DetectError of the given kind.
func Errorf(kind Kind, op string, format string, args ...any) error {
	return &DetectError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the failure kind carried by err. Errors that were not
// classified by a detector count as service failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var se *StatusError
	if errors.As(err, &se) {
		return KindStatus
	}
	var de *DetectError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindService
}

// StatusCode returns the status code a StatusError in err's chain carries.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
