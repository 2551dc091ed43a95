// Package packbits implements the PackBits run-length scheme: a signed
// header byte n selects a literal run of n+1 bytes (n >= 0) or a repeat of
// the next byte 1-n times (n < 0).
package packbits

import (
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/rawimg/imgerr"
)

var (
	// ErrOverrun indicates a run that extends past the destination buffer.
	ErrOverrun = fmt.Errorf("%w: PackBits run overruns destination", imgerr.ErrMalformedHeader)
	// ErrTruncated indicates the source ended inside a packet.
	ErrTruncated = fmt.Errorf("%w: PackBits data truncated", imgerr.ErrUnexpectedEndOfData)
)

// Decode fills dst from r. It reads exactly as many packets as needed to
// produce len(dst) bytes.
func Decode(r io.ByteReader, dst []byte) error {
	for i := 0; i < len(dst); {
		h, err := r.ReadByte()
		if err != nil {
			return truncated(err)
		}
		packet := int8(h)

		if packet < 0 {
			// -128 repeats 129 times.
			count := 1 - int(packet)
			v, err := r.ReadByte()
			if err != nil {
				return truncated(err)
			}
			if i+count > len(dst) {
				return fmt.Errorf("%w: repeat %d at %d of %d", ErrOverrun, count, i, len(dst))
			}
			for j := 0; j < count; j++ {
				dst[i] = v
				i++
			}
			continue
		}

		count := int(packet) + 1
		if i+count > len(dst) {
			return fmt.Errorf("%w: literal %d at %d of %d", ErrOverrun, count, i, len(dst))
		}
		for j := 0; j < count; j++ {
			v, err := r.ReadByte()
			if err != nil {
				return truncated(err)
			}
			dst[i] = v
			i++
		}
	}

	return nil
}

func truncated(err error) error {
	if errors.Is(err, imgerr.ErrUnexpectedEndOfData) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}

// Encode appends the PackBits encoding of src to dst.
func Encode(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && run < 128 && src[i+run] == src[i] {
			run++
		}
		if run > 1 {
			dst = append(dst, byte(int8(1-run)), src[i])
			i += run
			continue
		}

		start := i
		for i < len(src) && i-start < 128 {
			if i+1 < len(src) && src[i+1] == src[i] {
				break
			}
			i++
		}
		dst = append(dst, byte(i-start-1))
		dst = append(dst, src[start:i]...)
	}

	return dst
}
