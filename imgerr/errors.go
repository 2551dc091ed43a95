// Package imgerr holds the error taxonomy shared by every decoder and encoder
// in this module. Package specific errors wrap one of these sentinels, so
// callers can match either the precise cause or its category with errors.Is.
package imgerr

import "errors"

var (
	// ErrMalformedHeader indicates a signature mismatch or a field outside its documented range.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrUnsupportedFormat indicates a syntactically valid input this module does not implement.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedColorMode indicates a PSD color mode outside grayscale, indexed and RGB.
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
	// ErrUnexpectedEndOfData indicates a read past the end of a buffer or stream.
	ErrUnexpectedEndOfData = errors.New("unexpected end of data")
	// ErrInvalidArgument indicates a malformed caller-supplied argument.
	ErrInvalidArgument = errors.New("invalid argument")
)
