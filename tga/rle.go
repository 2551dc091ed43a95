package tga

import (
	"bytes"
	"fmt"

	"github.com/woozymasta/rawimg/binio"
)

// decodeRLE expands TGA run-length packets into n bytes of size-byte
// elements. A packet byte with the high bit set repeats the next element
// (low 7 bits)+1 times; otherwise (low 7 bits)+1 elements follow verbatim.
func decodeRLE(r *binio.Reader, n, size int) ([]byte, error) {
	if rem, ok := r.Remaining(); ok {
		// A run packet of 1+size bytes expands to at most 128 elements.
		packets := (rem + int64(size)) / int64(1+size)
		if int64(n) > packets*128*int64(size) {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d", ErrPixelDataShort, rem, n)
		}
	}
	out := make([]byte, n)
	elem := make([]byte, size)

	for decoded := 0; decoded < n; {
		packet, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: packet at %d: %v", ErrPixelDataShort, decoded, err)
		}
		count := (int(packet&0x7F) + 1) * size
		if decoded+count > n {
			return nil, fmt.Errorf("%w: %d bytes at %d of %d", ErrRLEOverrun, count, decoded, n)
		}

		if packet&0x80 != 0 {
			if err := r.ReadFull(elem); err != nil {
				return nil, fmt.Errorf("%w: run element: %v", ErrPixelDataShort, err)
			}
			for i := 0; i < count; i += size {
				copy(out[decoded+i:], elem)
			}
		} else if err := r.ReadFull(out[decoded : decoded+count]); err != nil {
			return nil, fmt.Errorf("%w: raw packet: %v", ErrPixelDataShort, err)
		}
		decoded += count
	}

	return out, nil
}

// encodeRLE appends the TGA run-length encoding of one scan line of
// size-byte elements to dst.
func encodeRLE(dst, line []byte, size int) []byte {
	count := len(line) / size
	at := func(i int) []byte { return line[i*size : (i+1)*size] }

	for i := 0; i < count; {
		run := 1
		for i+run < count && run < 128 && bytes.Equal(at(i+run), at(i)) {
			run++
		}
		if run > 1 {
			dst = append(dst, 0x80|byte(run-1))
			dst = append(dst, at(i)...)
			i += run
			continue
		}

		start := i
		for i < count && i-start < 128 {
			if i+1 < count && bytes.Equal(at(i+1), at(i)) {
				break
			}
			i++
		}
		dst = append(dst, byte(i-start-1))
		dst = append(dst, line[start*size:i*size]...)
	}

	return dst
}
