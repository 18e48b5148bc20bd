package supernote

import (
	"errors"
	"fmt"
)

// Wrap wraps an error by prepending additional text.
// The text can contain formatting parameters.
func Wrap(err error, msg string, v ...interface{}) error {
	msg = fmt.Sprintf(msg, v...)
	return fmt.Errorf("%v: %w", msg, err)
}

type unsupportedFormat struct {
	message string
}

// NewUnsupportedFormat creates a new "unsupported format" error.
// It marks a file whose leading bytes match no known container signature.
func NewUnsupportedFormat(s string, v ...interface{}) error {
	return unsupportedFormat{fmt.Sprintf("unsupported format: %v", fmt.Sprintf(s, v...))}
}

func (u unsupportedFormat) Error() string {
	return u.message
}

// IsUnsupportedFormat checks if the given error is an "unsupported format"
// error. This is the only error kind a caller may treat as "try another
// parser"; everything else indicates corruption or an I/O problem.
func IsUnsupportedFormat(err error) bool {
	var u unsupportedFormat
	return errors.As(err, &u)
}

type malformedContainer struct {
	message string
}

// NewMalformedContainer creates a new "malformed container" error.
// It marks a file that matched a signature but cannot be decoded.
func NewMalformedContainer(s string, v ...interface{}) error {
	return malformedContainer{fmt.Sprintf("malformed container: %v", fmt.Sprintf(s, v...))}
}

func (m malformedContainer) Error() string {
	return m.message
}

// IsMalformedContainer checks if the given error is a "malformed container" error.
func IsMalformedContainer(err error) bool {
	var m malformedContainer
	return errors.As(err, &m)
}
