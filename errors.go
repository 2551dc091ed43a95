package rawimg

import (
	"errors"
	"fmt"

	"github.com/woozymasta/rawimg/imgerr"
)

// Error categories shared by every format package.
var (
	ErrMalformedHeader      = imgerr.ErrMalformedHeader
	ErrUnsupportedFormat    = imgerr.ErrUnsupportedFormat
	ErrUnsupportedColorMode = imgerr.ErrUnsupportedColorMode
	ErrUnexpectedEndOfData  = imgerr.ErrUnexpectedEndOfData
	ErrInvalidArgument      = imgerr.ErrInvalidArgument
)

var (
	// ErrUnsupportedType indicates a type tag the requested operation does not handle.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported image type", imgerr.ErrUnsupportedFormat)
	// ErrInvalidOffset indicates a byte offset outside the source buffer.
	ErrInvalidOffset = fmt.Errorf("%w: offset outside buffer", imgerr.ErrInvalidArgument)
	// ErrUnknownExtension indicates a path whose extension maps to no type.
	ErrUnknownExtension = fmt.Errorf("%w: unknown file extension", imgerr.ErrUnsupportedFormat)
	// ErrOpenFile indicates file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrReadFile indicates file read failed.
	ErrReadFile = errors.New("read file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteFile indicates writing encoded data failed.
	ErrWriteFile = errors.New("write file failed")
)
