package psd

import (
	"fmt"

	"github.com/woozymasta/rawimg/imgerr"
)

var (
	// ErrInvalidSignature indicates a file that does not start with "8BPS".
	ErrInvalidSignature = fmt.Errorf("%w: PSD signature is not 8BPS", imgerr.ErrMalformedHeader)
	// ErrHeaderRead indicates the fixed 26 byte header could not be read.
	ErrHeaderRead = fmt.Errorf("%w: reading PSD header failed", imgerr.ErrUnexpectedEndOfData)
	// ErrInvalidVersion indicates a version other than 1 (PSD) or 2 (PSB).
	ErrInvalidVersion = fmt.Errorf("%w: invalid PSD version", imgerr.ErrMalformedHeader)
	// ErrPSBNotSupported indicates a large document (version 2).
	ErrPSBNotSupported = fmt.Errorf("%w: PSB (version 2) documents", imgerr.ErrUnsupportedFormat)
	// ErrChannelCount indicates a channel count outside 1..56.
	ErrChannelCount = fmt.Errorf("%w: PSD channel count out of range", imgerr.ErrMalformedHeader)
	// ErrDimensions indicates a width or height outside 1..30000.
	ErrDimensions = fmt.Errorf("%w: PSD dimensions out of range", imgerr.ErrMalformedHeader)
	// ErrUnsupportedDepth indicates a depth other than 8 bits per channel.
	ErrUnsupportedDepth = fmt.Errorf("%w: PSD depth", imgerr.ErrUnsupportedFormat)
	// ErrUnknownColorMode indicates a color mode value that PSD does not define.
	ErrUnknownColorMode = fmt.Errorf("%w: unknown PSD color mode", imgerr.ErrMalformedHeader)
	// ErrColorMode indicates a defined color mode this decoder does not implement.
	ErrColorMode = fmt.Errorf("%w: PSD", imgerr.ErrUnsupportedColorMode)
	// ErrColorModeData indicates a color mode data section that is too large or too small for the mode.
	ErrColorModeData = fmt.Errorf("%w: PSD color mode data", imgerr.ErrMalformedHeader)
	// ErrSectionLength indicates a section length inconsistent with its content.
	ErrSectionLength = fmt.Errorf("%w: PSD section length", imgerr.ErrMalformedHeader)
	// ErrLayerCount indicates more layers than the layer info section can hold.
	ErrLayerCount = fmt.Errorf("%w: PSD layer count exceeds layer info", imgerr.ErrMalformedHeader)
	// ErrLayerBounds indicates a layer rectangle with negative or oversized extent.
	ErrLayerBounds = fmt.Errorf("%w: PSD layer bounds", imgerr.ErrMalformedHeader)
	// ErrBlendSignature indicates a layer record without the 8BIM blend signature.
	ErrBlendSignature = fmt.Errorf("%w: PSD layer blend signature is not 8BIM", imgerr.ErrMalformedHeader)
	// ErrChannelLength indicates a channel declared length that cannot hold its data.
	ErrChannelLength = fmt.Errorf("%w: PSD channel length", imgerr.ErrMalformedHeader)
	// ErrCompression indicates an unknown compression method.
	ErrCompression = fmt.Errorf("%w: PSD compression method", imgerr.ErrUnsupportedFormat)
	// ErrZipData indicates ZIP compressed channel data that failed to inflate.
	ErrZipData = fmt.Errorf("%w: PSD ZIP channel data", imgerr.ErrMalformedHeader)
	// ErrTruncated indicates a section that ends before its content.
	ErrTruncated = fmt.Errorf("%w: PSD data truncated", imgerr.ErrUnexpectedEndOfData)
)
