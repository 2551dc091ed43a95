package psd

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zlib"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/internal/packbits"
)

// Compression is the image data compression tag.
type Compression uint16

const (
	CompressionRaw          Compression = 0
	CompressionRLE          Compression = 1
	CompressionZip          Compression = 2
	CompressionZipPredicted Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionRaw:
		return "raw"
	case CompressionRLE:
		return "rle"
	case CompressionZip:
		return "zip"
	case CompressionZipPredicted:
		return "zip-prediction"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}

// A two byte PackBits repeat packet expands to at most 129 bytes.
const maxPackBitsRun = 129

// readChannelData reads one channel plane of width*height bytes. The reader
// is left at the end of the channel's declared length.
func readChannelData(r *binio.Reader, ch *Channel, width, height int, opts *Options) error {
	start := r.Position()
	end := start + int64(ch.Length)
	if ch.Length < 2 {
		return fmt.Errorf("%w: %s channel declares %d bytes", ErrChannelLength, ch.ID, ch.Length)
	}
	if rem, ok := r.Remaining(); ok && int64(ch.Length) > rem {
		return fmt.Errorf("%w: %s channel declares %d bytes, %d left", ErrChannelLength, ch.ID, ch.Length, rem)
	}

	c, err := r.ReadUint16()
	if err != nil {
		return truncated("channel compression", err)
	}
	ch.Compression = Compression(c)

	if ch.ID == ChannelUserMask2 || width <= 0 || height <= 0 {
		return r.Skip(end - r.Position())
	}

	size := width * height
	switch ch.Compression {
	case CompressionRaw:
		if int64(size) > int64(ch.Length)-2 {
			return fmt.Errorf("%w: %s channel needs %d raw bytes, declares %d", ErrChannelLength, ch.ID, size, ch.Length-2)
		}
		if ch.Data, err = r.ReadBytes(size); err != nil {
			return truncated("raw channel data", err)
		}
	case CompressionRLE:
		if 2*int64(size) > maxPackBitsRun*int64(ch.Length) {
			return fmt.Errorf("%w: %s channel of %d bytes cannot expand to %d", ErrChannelLength, ch.ID, ch.Length, size)
		}
		// Row byte counts; decoding is driven by the output size.
		if err := r.Skip(2 * int64(height)); err != nil {
			return truncated("channel row lengths", err)
		}
		// Rows grow as they decode, so a declared length alone cannot
		// reserve the plane on a stream.
		ch.Data = make([]byte, 0, min(size, initialPixels))
		for y := range height {
			ch.Data = slices.Grow(ch.Data, width)[:len(ch.Data)+width]
			if err := packbits.Decode(r, ch.Data[y*width:]); err != nil {
				return fmt.Errorf("%s channel row %d: %w", ch.ID, y, err)
			}
		}
	case CompressionZip, CompressionZipPredicted:
		if int64(size) > maxDeflateExpansion*(int64(ch.Length)-2) {
			return fmt.Errorf("%w: %s channel of %d bytes cannot inflate to %d", ErrChannelLength, ch.ID, ch.Length, size)
		}
		compressed, err := r.ReadBytes(int(ch.Length) - 2)
		if err != nil {
			return truncated("zip channel data", err)
		}
		if ch.Data, err = inflate(compressed, size); err != nil {
			return err
		}
		if ch.Compression == CompressionZipPredicted {
			undoPrediction(ch.Data, width)
		}
	default:
		return fmt.Errorf("%w: %d", ErrCompression, c)
	}

	pos := r.Position()
	if pos > end {
		return fmt.Errorf("%w: %s channel read %d bytes past its declared length", ErrChannelLength, ch.ID, pos-end)
	}
	if pos < end {
		opts.warnf("psd: %s channel declares %d bytes, %d used", ch.ID, ch.Length, pos-start)
		if err := r.Skip(end - pos); err != nil {
			return truncated("channel data", err)
		}
	}
	return nil
}

func inflate(compressed []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZipData, err)
	}
	defer func() { _ = zr.Close() }()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZipData, err)
	}
	return out, nil
}

// undoPrediction reverses per-row delta encoding of 8-bit samples.
func undoPrediction(data []byte, width int) {
	for row := 0; row+width <= len(data); row += width {
		for i := row + 1; i < row+width; i++ {
			data[i] += data[i-1]
		}
	}
}
