package tga

import (
	"fmt"

	"github.com/woozymasta/rawimg/imgerr"
)

var (
	// ErrHeaderRead indicates the 18 byte header could not be read.
	ErrHeaderRead = fmt.Errorf("%w: reading TGA header failed", imgerr.ErrUnexpectedEndOfData)
	// ErrUnknownImageType indicates an image type outside colormap/truecolor/grayscale raw or RLE.
	ErrUnknownImageType = fmt.Errorf("%w: unknown TGA image type", imgerr.ErrUnsupportedFormat)
	// ErrUnsupportedDepth indicates a pixel or colormap depth the image type cannot use.
	ErrUnsupportedDepth = fmt.Errorf("%w: unsupported TGA depth", imgerr.ErrUnsupportedFormat)
	// ErrPixelDataShort indicates fewer pixel bytes than width*height requires.
	ErrPixelDataShort = fmt.Errorf("%w: TGA pixel data truncated", imgerr.ErrUnexpectedEndOfData)
	// ErrColorMapShort indicates the colormap extends past the data.
	ErrColorMapShort = fmt.Errorf("%w: TGA colormap truncated", imgerr.ErrUnexpectedEndOfData)
	// ErrColorMapIndex indicates a pixel index past the end of the colormap.
	ErrColorMapIndex = fmt.Errorf("%w: TGA colormap index out of range", imgerr.ErrMalformedHeader)
	// ErrRLEOverrun indicates an RLE packet that extends past the image.
	ErrRLEOverrun = fmt.Errorf("%w: TGA RLE packet overruns image", imgerr.ErrMalformedHeader)
	// ErrImageTooLarge indicates an image that does not fit 16-bit TGA dimensions.
	ErrImageTooLarge = fmt.Errorf("%w: image too large for TGA", imgerr.ErrInvalidArgument)
	// ErrUnknownEncodeMode indicates an encode mode other than raw or RLE.
	ErrUnknownEncodeMode = fmt.Errorf("%w: unknown TGA encode mode", imgerr.ErrInvalidArgument)
)
