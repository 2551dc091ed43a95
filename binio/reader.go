package binio

import (
	"fmt"
	"io"
	"slices"
)

// Reader reads typed values from a Source. It is not safe for concurrent use.
type Reader struct {
	src   Source
	order ByteOrder
	buf   [8]byte
}

// NewReader returns a Reader over src with the default byte order.
func NewReader(src Source, order ByteOrder) *Reader {
	return &Reader{src: src, order: order}
}

// FromBytes returns a buffer-backed Reader over b.
func FromBytes(b []byte, order ByteOrder) *Reader {
	return NewReader(NewBufferSource(b), order)
}

// FromStream returns a stream-backed Reader over r.
func FromStream(r io.Reader, order ByteOrder) *Reader {
	return NewReader(NewStreamSource(r), order)
}

// Order returns the default byte order.
func (r *Reader) Order() ByteOrder { return r.order }

func (r *Reader) fill(n int) ([]byte, error) {
	if err := r.src.ReadFull(r.buf[:n]); err != nil {
		return nil, err
	}
	return r.buf[:n], nil
}

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	return r.src.ReadByte()
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.src.ReadByte()
	return int8(b), err
}

func (r *Reader) readUint16(o ByteOrder) (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return o.Uint16(b), nil
}

func (r *Reader) readUint32(o ByteOrder) (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return o.Uint32(b), nil
}

func (r *Reader) readUint64(o ByteOrder) (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return o.Uint64(b), nil
}

func (r *Reader) readInt16(o ByteOrder) (int16, error) {
	v, err := r.readUint16(o)
	return int16(v), err
}

func (r *Reader) readInt32(o ByteOrder) (int32, error) {
	v, err := r.readUint32(o)
	return int32(v), err
}

func (r *Reader) readInt64(o ByteOrder) (int64, error) {
	v, err := r.readUint64(o)
	return int64(v), err
}

func (r *Reader) readFloat32(o ByteOrder) (float32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return o.Float32(b), nil
}

func (r *Reader) readFloat64(o ByteOrder) (float64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return o.Float64(b), nil
}

func (r *Reader) ReadUint16() (uint16, error)   { return r.readUint16(r.order) }
func (r *Reader) ReadInt16() (int16, error)     { return r.readInt16(r.order) }
func (r *Reader) ReadUint32() (uint32, error)   { return r.readUint32(r.order) }
func (r *Reader) ReadInt32() (int32, error)     { return r.readInt32(r.order) }
func (r *Reader) ReadUint64() (uint64, error)   { return r.readUint64(r.order) }
func (r *Reader) ReadInt64() (int64, error)     { return r.readInt64(r.order) }
func (r *Reader) ReadFloat32() (float32, error) { return r.readFloat32(r.order) }
func (r *Reader) ReadFloat64() (float64, error) { return r.readFloat64(r.order) }

func (r *Reader) ReadUint16BE() (uint16, error)   { return r.readUint16(BigEndian) }
func (r *Reader) ReadInt16BE() (int16, error)     { return r.readInt16(BigEndian) }
func (r *Reader) ReadUint32BE() (uint32, error)   { return r.readUint32(BigEndian) }
func (r *Reader) ReadInt32BE() (int32, error)     { return r.readInt32(BigEndian) }
func (r *Reader) ReadUint64BE() (uint64, error)   { return r.readUint64(BigEndian) }
func (r *Reader) ReadInt64BE() (int64, error)     { return r.readInt64(BigEndian) }
func (r *Reader) ReadFloat32BE() (float32, error) { return r.readFloat32(BigEndian) }
func (r *Reader) ReadFloat64BE() (float64, error) { return r.readFloat64(BigEndian) }

func (r *Reader) ReadUint16LE() (uint16, error)   { return r.readUint16(LittleEndian) }
func (r *Reader) ReadInt16LE() (int16, error)     { return r.readInt16(LittleEndian) }
func (r *Reader) ReadUint32LE() (uint32, error)   { return r.readUint32(LittleEndian) }
func (r *Reader) ReadInt32LE() (int32, error)     { return r.readInt32(LittleEndian) }
func (r *Reader) ReadUint64LE() (uint64, error)   { return r.readUint64(LittleEndian) }
func (r *Reader) ReadInt64LE() (int64, error)     { return r.readInt64(LittleEndian) }
func (r *Reader) ReadFloat32LE() (float32, error) { return r.readFloat32(LittleEndian) }
func (r *Reader) ReadFloat64LE() (float64, error) { return r.readFloat64(LittleEndian) }

// ReadFull fills p.
func (r *Reader) ReadFull(p []byte) error {
	return r.src.ReadFull(p)
}

// ReadBytes reads n bytes into a new slice. The length is checked against
// the remaining buffer before allocating.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrShortRead, n)
	}
	rem, ok := r.Remaining()
	if ok && int64(n) > rem {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortRead, n, rem)
	}
	if !ok && n > readChunk {
		return r.readGrowing(n)
	}
	b := make([]byte, n)
	if err := r.src.ReadFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

const readChunk = 1 << 20

// readGrowing reads n bytes from a stream in chunks, growing the result only
// as data arrives.
func (r *Reader) readGrowing(n int) ([]byte, error) {
	b := make([]byte, 0, readChunk)
	for len(b) < n {
		k := min(n-len(b), readChunk)
		b = slices.Grow(b, k)[:len(b)+k]
		if err := r.src.ReadFull(b[len(b)-k:]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ReadString reads length raw bytes as a string without charset validation.
func (r *Reader) ReadString(length int) (string, error) {
	b, err := r.ReadBytes(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances n bytes.
func (r *Reader) Skip(n int64) error { return r.src.Skip(n) }

// Mark remembers the current position. A second Mark replaces the first.
func (r *Reader) Mark() { r.src.Mark() }

// Reset returns to the last mark.
func (r *Reader) Reset() error { return r.src.Reset() }

// Unmark drops the mark. Stream sources stop recording lookahead bytes.
func (r *Reader) Unmark() { r.src.Unmark() }

// Position returns the number of bytes consumed.
func (r *Reader) Position() int64 { return r.src.Position() }

// SetPosition moves to an absolute position. Only buffer sources support it.
func (r *Reader) SetPosition(pos int64) error {
	s, ok := r.src.(interface{ SetPosition(int64) error })
	if !ok {
		return ErrNotSeekable
	}
	return s.SetPosition(pos)
}

// Remaining returns the unread byte count when the source is bounded.
func (r *Reader) Remaining() (int64, bool) {
	s, ok := r.src.(interface{ Remaining() int64 })
	if !ok {
		return 0, false
	}
	return s.Remaining(), true
}
