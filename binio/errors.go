package binio

import (
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/rawimg/imgerr"
)

var (
	// ErrShortRead indicates a read past the end of the source.
	ErrShortRead = fmt.Errorf("%w: short read", imgerr.ErrUnexpectedEndOfData)
	// ErrNoMark indicates Reset without a preceding Mark.
	ErrNoMark = fmt.Errorf("%w: reset without mark", imgerr.ErrInvalidArgument)
	// ErrNegativeSkip indicates a backward skip on a stream source.
	ErrNegativeSkip = fmt.Errorf("%w: negative skip on stream", imgerr.ErrInvalidArgument)
	// ErrNotSeekable indicates SetPosition on a stream source.
	ErrNotSeekable = fmt.Errorf("%w: source is not seekable", imgerr.ErrInvalidArgument)
	// ErrPositionOutOfRange indicates SetPosition outside the buffer.
	ErrPositionOutOfRange = fmt.Errorf("%w: position out of range", imgerr.ErrUnexpectedEndOfData)
)

// endOfData converts io.EOF style errors into ErrShortRead.
func endOfData(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return err
}
