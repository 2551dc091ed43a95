package binio

import (
	"bufio"
	"bytes"
	"io"
)

// byteWriter is the sink a Writer appends to.
type byteWriter interface {
	io.Writer
	io.ByteWriter
}

// Writer writes typed values with a default byte order.
type Writer struct {
	w     byteWriter
	bw    *bufio.Writer
	mem   *bytes.Buffer
	order ByteOrder
	pos   int64
	buf   [8]byte
}

// NewBufferWriter returns a Writer appending to a growable buffer.
func NewBufferWriter(order ByteOrder) *Writer {
	mem := new(bytes.Buffer)
	return &Writer{w: mem, mem: mem, order: order}
}

// NewStreamWriter returns a Writer over w. Call Flush when done.
func NewStreamWriter(w io.Writer, order ByteOrder) *Writer {
	if bw, ok := w.(byteWriter); ok {
		return &Writer{w: bw, order: order}
	}
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, bw: bw, order: order}
}

// Bytes returns the written bytes of a buffer-backed Writer, nil otherwise.
func (w *Writer) Bytes() []byte {
	if w.mem == nil {
		return nil
	}
	return w.mem.Bytes()
}

// Flush flushes buffered stream output.
func (w *Writer) Flush() error {
	if w.bw == nil {
		return nil
	}
	return w.bw.Flush()
}

// Position returns the number of bytes written.
func (w *Writer) Position() int64 { return w.pos }

func (w *Writer) WriteByte(b byte) error {
	if err := w.w.WriteByte(b); err != nil {
		return err
	}
	w.pos++
	return nil
}

// Write writes p verbatim.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	for ; n > 0; n-- {
		if err := w.WriteByte(0); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) put(n int) error {
	_, err := w.Write(w.buf[:n])
	return err
}

func (w *Writer) writeUint16(o ByteOrder, v uint16) error {
	o.PutUint16(w.buf[:2], v)
	return w.put(2)
}

func (w *Writer) writeUint32(o ByteOrder, v uint32) error {
	o.PutUint32(w.buf[:4], v)
	return w.put(4)
}

func (w *Writer) writeUint64(o ByteOrder, v uint64) error {
	o.PutUint64(w.buf[:8], v)
	return w.put(8)
}

func (w *Writer) writeFloat32(o ByteOrder, v float32) error {
	o.PutFloat32(w.buf[:4], v)
	return w.put(4)
}

func (w *Writer) writeFloat64(o ByteOrder, v float64) error {
	o.PutFloat64(w.buf[:8], v)
	return w.put(8)
}

func (w *Writer) WriteUint16(v uint16) error   { return w.writeUint16(w.order, v) }
func (w *Writer) WriteInt16(v int16) error     { return w.writeUint16(w.order, uint16(v)) }
func (w *Writer) WriteUint32(v uint32) error   { return w.writeUint32(w.order, v) }
func (w *Writer) WriteInt32(v int32) error     { return w.writeUint32(w.order, uint32(v)) }
func (w *Writer) WriteUint64(v uint64) error   { return w.writeUint64(w.order, v) }
func (w *Writer) WriteInt64(v int64) error     { return w.writeUint64(w.order, uint64(v)) }
func (w *Writer) WriteFloat32(v float32) error { return w.writeFloat32(w.order, v) }
func (w *Writer) WriteFloat64(v float64) error { return w.writeFloat64(w.order, v) }

func (w *Writer) WriteUint16BE(v uint16) error   { return w.writeUint16(BigEndian, v) }
func (w *Writer) WriteInt16BE(v int16) error     { return w.writeUint16(BigEndian, uint16(v)) }
func (w *Writer) WriteUint32BE(v uint32) error   { return w.writeUint32(BigEndian, v) }
func (w *Writer) WriteInt32BE(v int32) error     { return w.writeUint32(BigEndian, uint32(v)) }
func (w *Writer) WriteUint64BE(v uint64) error   { return w.writeUint64(BigEndian, v) }
func (w *Writer) WriteInt64BE(v int64) error     { return w.writeUint64(BigEndian, uint64(v)) }
func (w *Writer) WriteFloat32BE(v float32) error { return w.writeFloat32(BigEndian, v) }
func (w *Writer) WriteFloat64BE(v float64) error { return w.writeFloat64(BigEndian, v) }

func (w *Writer) WriteUint16LE(v uint16) error   { return w.writeUint16(LittleEndian, v) }
func (w *Writer) WriteInt16LE(v int16) error     { return w.writeUint16(LittleEndian, uint16(v)) }
func (w *Writer) WriteUint32LE(v uint32) error   { return w.writeUint32(LittleEndian, v) }
func (w *Writer) WriteInt32LE(v int32) error     { return w.writeUint32(LittleEndian, uint32(v)) }
func (w *Writer) WriteUint64LE(v uint64) error   { return w.writeUint64(LittleEndian, v) }
func (w *Writer) WriteInt64LE(v int64) error     { return w.writeUint64(LittleEndian, uint64(v)) }
func (w *Writer) WriteFloat32LE(v float32) error { return w.writeFloat32(LittleEndian, v) }
func (w *Writer) WriteFloat64LE(v float64) error { return w.writeFloat64(LittleEndian, v) }

// WriteString writes the raw bytes of s.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
