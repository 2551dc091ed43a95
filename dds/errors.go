package dds

import (
	"errors"
	"fmt"

	"github.com/woozymasta/rawimg/imgerr"
)

var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = fmt.Errorf("%w: size overflow", imgerr.ErrMalformedHeader)
	// ErrHeaderRead indicates the DDS magic or header could not be read.
	ErrHeaderRead = fmt.Errorf("%w: reading DDS header failed", imgerr.ErrMalformedHeader)
	// ErrDX10Read indicates the DX10 extension header could not be read.
	ErrDX10Read = fmt.Errorf("%w: reading DDS DX10 header failed", imgerr.ErrMalformedHeader)
	// ErrDimensions indicates a zero or oversized width or height.
	ErrDimensions = fmt.Errorf("%w: DDS dimensions out of range", imgerr.ErrMalformedHeader)
	// ErrCompressedFormat indicates a block compressed (FourCC or DXGI BCn) surface.
	ErrCompressedFormat = fmt.Errorf("%w: block compressed DDS", imgerr.ErrUnsupportedFormat)
	// ErrPixelLayout indicates an uncompressed layout this decoder cannot read.
	ErrPixelLayout = fmt.Errorf("%w: DDS pixel layout", imgerr.ErrUnsupportedFormat)
	// ErrPixelDataShort indicates surface data shorter than the header declares.
	ErrPixelDataShort = fmt.Errorf("%w: DDS pixel data", imgerr.ErrUnexpectedEndOfData)

	// ErrBlockTableRead indicates the EDDS block table ended early.
	ErrBlockTableRead = fmt.Errorf("%w: reading EDDS block table failed", imgerr.ErrUnexpectedEndOfData)
	// ErrBlockTableUnknownMagic indicates an unknown block magic in the table.
	ErrBlockTableUnknownMagic = fmt.Errorf("%w: unknown EDDS block magic", imgerr.ErrMalformedHeader)
	// ErrBlockTableInvalidSize indicates a negative block size in the table.
	ErrBlockTableInvalidSize = fmt.Errorf("%w: invalid EDDS block size", imgerr.ErrMalformedHeader)
	// ErrBlockBodyRead indicates a block body shorter than its table entry.
	ErrBlockBodyRead = fmt.Errorf("%w: reading EDDS block body failed", imgerr.ErrUnexpectedEndOfData)
	// ErrCopySizeMismatch indicates a COPY block whose size differs from the level size.
	ErrCopySizeMismatch = fmt.Errorf("%w: COPY block size mismatch", imgerr.ErrMalformedHeader)
	// ErrInvalidTargetSize indicates a non-positive decoded size.
	ErrInvalidTargetSize = fmt.Errorf("%w: invalid EDDS target size", imgerr.ErrMalformedHeader)
	// ErrChunkStreamTruncated indicates an LZ4 chunk stream that ends early.
	ErrChunkStreamTruncated = fmt.Errorf("%w: LZ4 chunk stream truncated", imgerr.ErrUnexpectedEndOfData)
	// ErrUnknownLZ4Flags indicates unknown LZ4 chunk flags.
	ErrUnknownLZ4Flags = fmt.Errorf("%w: unknown LZ4 chunk flags", imgerr.ErrMalformedHeader)
	// ErrInvalidChunkSize indicates a chunk size of zero or past the block end.
	ErrInvalidChunkSize = fmt.Errorf("%w: invalid LZ4 chunk size", imgerr.ErrMalformedHeader)
	// ErrLZ4Decode indicates LZ4 decoding failed.
	ErrLZ4Decode = fmt.Errorf("%w: LZ4 decode failed", imgerr.ErrMalformedHeader)
	// ErrDecodeOverrun indicates chunks that decode past the target size.
	ErrDecodeOverrun = fmt.Errorf("%w: LZ4 chunks overrun target", imgerr.ErrMalformedHeader)
	// ErrDecodedSizeMismatch indicates chunks that decode to less than the target size.
	ErrDecodedSizeMismatch = fmt.Errorf("%w: LZ4 decoded size mismatch", imgerr.ErrMalformedHeader)
	// ErrBlockLengthMismatch indicates bytes left in a block after its last chunk.
	ErrBlockLengthMismatch = fmt.Errorf("%w: LZ4 block length mismatch", imgerr.ErrMalformedHeader)
	// ErrLegacyBlock indicates a table-less EDDS payload that is neither LZ4 nor raw.
	ErrLegacyBlock = fmt.Errorf("%w: legacy EDDS payload", imgerr.ErrMalformedHeader)

	// ErrInvalidFormat indicates a write format other than RGBA8 or BGRA8.
	ErrInvalidFormat = fmt.Errorf("%w: DDS write format", imgerr.ErrInvalidArgument)
	// ErrInputTooLarge indicates a payload too large for an EDDS block.
	ErrInputTooLarge = fmt.Errorf("%w: input data too large", imgerr.ErrInvalidArgument)
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrWriteHeader indicates writing the DDS magic or header failed.
	ErrWriteHeader = errors.New("writing DDS header failed")
	// ErrWriteBlock indicates writing an EDDS block failed.
	ErrWriteBlock = errors.New("writing EDDS block failed")
	// ErrWriteChunkStream indicates writing an LZ4 chunk failed.
	ErrWriteChunkStream = errors.New("writing chunk stream failed")
	// ErrWriteData indicates writing surface data failed.
	ErrWriteData = errors.New("writing DDS data failed")
)
