package growthplan

import (
	"errors"
	"fmt"
)

// Kind sentinels; match with errors.Is on a *ParseError.
var (
	ErrNoStructureFound = errors.New("no JSON structure found")
	ErrMalformedJSON    = errors.New("malformed JSON")
	ErrUnexpectedShape  = errors.New("unexpected JSON shape")
	ErrMissingField     = errors.New("missing field")
)

type ParseError struct {
	Kind  error
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s %q", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *ParseError) Is(target error) bool { return target == e.Kind }

func (e *ParseError) Unwrap() error { return e.Err }

func missing(field string) *ParseError {
	return &ParseError{Kind: ErrMissingField, Field: field}
}

func shapeErr(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrUnexpectedShape, Err: fmt.Errorf(format, args...)}
}
