package pkg

import (
	"errors"
	"fmt"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is reports a match against the error code so callers can use errors.Is(err, pkg.ErrUnknownField).
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError = errors.New("internal Server Error")
	ErrNotFound            = errors.New("your requested Item is not found")
	ErrConflict            = errors.New("your Item already exist")
	ErrBadParamInput       = errors.New("given Param is not valid")

	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownAnalyzer = errors.New("unknown analyzer")
	ErrInvalidQuery    = errors.New("invalid suggest query")
	ErrBuildFailure    = errors.New("suggester build failure")
)

var MessageInternalServerError string = "internal server error"

func NewUnknownFieldError(index, field string) error {
	return WrapErrorf(nil, ErrUnknownField, "field %q was never indexed in index %q", field, index)
}

func NewUnknownAnalyzerError(name string) error {
	return WrapErrorf(nil, ErrUnknownAnalyzer, "analyzer %q is not registered", name)
}

func NewInvalidQueryError(format string, a ...interface{}) error {
	return WrapErrorf(nil, ErrInvalidQuery, format, a...)
}

// NewBuildFailure wraps the term source error that stopped a build or rebuild.
func NewBuildFailure(orig error, index string, shard int, field string) error {
	return WrapErrorf(orig, ErrBuildFailure, "failed to build suggester for %s/%d/%s", index, shard, field)
}

// ErrorCode returns the code carried by err, or ErrInternalServerError when err is not a *Error.
func ErrorCode(err error) error {
	var e *Error
	if errors.As(err, &e) && e.code != nil {
		return e.code
	}
	return ErrInternalServerError
}
