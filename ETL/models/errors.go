package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every phase of the run. Callers wrap them with
// context and test them with errors.Is.
var (
	ErrInputNotFound       = errors.New("input file does not exist")
	ErrParse               = errors.New("parse error")
	ErrChunkTimeout        = errors.New("chunk transformation timed out")
	ErrUnsupportedDriver   = errors.New("unsupported database driver")
	ErrUnsupportedEncoding = errors.New("unsupported input encoding")
)

// ParseError reports a field that could not be converted
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: field %s: invalid value %q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("line %d: field %s: invalid value %q", e.Line, e.Field, e.Value)
}

// Is lets errors.Is(err, ErrParse) match any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
