package tickets

import (
	"errors"
	"fmt"
)

// ErrorKind classifies dataset I/O failures.
type ErrorKind string

const (
	// SourceUnavailable means a dataset or output file could not be opened.
	SourceUnavailable ErrorKind = "source_unavailable"
	// MalformedRecord means a line did not decompose into the four typed fields.
	MalformedRecord ErrorKind = "malformed_record"
)

// Error is returned by the loader and the sorted-output sink.
type Error struct {
	Kind ErrorKind
	Path string
	Line int // 1-based; zero when the error is not tied to a line
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tickets: %s: %s:%d: %v", e.Kind, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("tickets: %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSourceUnavailable reports whether err (or any error in its chain) is a
// SourceUnavailable error.
func IsSourceUnavailable(err error) bool {
	return kindOf(err) == SourceUnavailable
}

// IsMalformedRecord reports whether err (or any error in its chain) is a
// MalformedRecord error.
func IsMalformedRecord(err error) bool {
	return kindOf(err) == MalformedRecord
}

func kindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
