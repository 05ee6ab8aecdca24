package shrink

import (
	"fmt"

	"github.com/pkg/errors"
)

// DecodeError reports input that could not be turned into pixels: unreadable,
// corrupt, or in a format no decoder understands.
type DecodeError struct {
	// Path is the input file, empty when decoding from memory.
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("shrink: decode: %v", e.Err)
	}
	return fmt.Sprintf("shrink: decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to encode pixels in the requested format or
// to write the encoded output.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("shrink: encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// InvalidParameterError reports a caller-supplied option that is malformed or
// out of range.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("shrink: invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func invalidParam(name string, value any, reason string) error {
	return &InvalidParameterError{Name: name, Value: value, Reason: reason}
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsEncodeError reports whether err is, or wraps, an *EncodeError.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}

// IsInvalidParameter reports whether err is, or wraps, an *InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var ie *InvalidParameterError
	return errors.As(err, &ie)
}
