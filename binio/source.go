package binio

import (
	"bufio"
	"fmt"
	"io"
)

// Source is a sequential byte source with a single mark.
type Source interface {
	io.ByteReader
	// ReadFull fills p or fails with ErrShortRead.
	ReadFull(p []byte) error
	// Skip advances n bytes. Streams consume the skipped bytes.
	Skip(n int64) error
	// Mark remembers the current position, replacing any earlier mark.
	Mark()
	// Reset returns to the marked position.
	Reset() error
	// Unmark drops the mark once the lookahead is accepted.
	Unmark()
	// Position returns the number of bytes consumed from the start.
	Position() int64
}

// BufferSource reads from an in-memory slice without copying it.
// The slice must not be mutated while it is being read.
type BufferSource struct {
	buf  []byte
	pos  int
	mark int // -1 when no mark is set
}

// NewBufferSource returns a source over b.
func NewBufferSource(b []byte) *BufferSource {
	return &BufferSource{buf: b, mark: -1}
}

func (s *BufferSource) ReadByte() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, ErrShortRead
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *BufferSource) ReadFull(p []byte) error {
	if len(p) > len(s.buf)-s.pos {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrShortRead, len(p), s.pos, len(s.buf)-s.pos)
	}
	copy(p, s.buf[s.pos:])
	s.pos += len(p)
	return nil
}

// Next returns the next n bytes as a sub-slice of the buffer.
func (s *BufferSource) Next(n int) ([]byte, error) {
	if n < 0 || n > len(s.buf)-s.pos {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrShortRead, n, s.pos, len(s.buf)-s.pos)
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Skip moves the cursor by n bytes; negative n moves backwards.
func (s *BufferSource) Skip(n int64) error {
	return s.SetPosition(int64(s.pos) + n)
}

func (s *BufferSource) Mark() { s.mark = s.pos }

func (s *BufferSource) Reset() error {
	if s.mark < 0 {
		return ErrNoMark
	}
	s.pos = s.mark
	return nil
}

func (s *BufferSource) Unmark() { s.mark = -1 }

func (s *BufferSource) Position() int64 { return int64(s.pos) }

// SetPosition moves the cursor to an absolute position.
func (s *BufferSource) SetPosition(pos int64) error {
	if pos < 0 || pos > int64(len(s.buf)) {
		return fmt.Errorf("%w: %d (length %d)", ErrPositionOutOfRange, pos, len(s.buf))
	}
	s.pos = int(pos)
	return nil
}

// Remaining returns the number of unread bytes.
func (s *BufferSource) Remaining() int64 { return int64(len(s.buf) - s.pos) }

// StreamSource reads from an io.Reader. Bytes read after Mark are kept in a
// lookahead buffer so Reset can replay them; nested marks are not supported.
type StreamSource struct {
	r       io.ByteReader
	rr      io.Reader
	pos     int64
	marking bool
	record  []byte
	replay  []byte
}

// NewStreamSource returns a source over r, buffering it when r has no ReadByte.
func NewStreamSource(r io.Reader) *StreamSource {
	br, ok := r.(io.ByteReader)
	if !ok {
		b := bufio.NewReader(r)
		br, r = b, b
	}
	return &StreamSource{r: br, rr: r}
}

func (s *StreamSource) ReadByte() (byte, error) {
	var b byte
	if len(s.replay) > 0 {
		b = s.replay[0]
		s.replay = s.replay[1:]
	} else {
		var err error
		if b, err = s.r.ReadByte(); err != nil {
			return 0, endOfData(err)
		}
	}
	if s.marking {
		s.record = append(s.record, b)
	}
	s.pos++
	return b, nil
}

func (s *StreamSource) ReadFull(p []byte) error {
	if !s.marking && len(s.replay) == 0 {
		n, err := io.ReadFull(s.rr, p)
		s.pos += int64(n)
		return endOfData(err)
	}
	for i := range p {
		b, err := s.ReadByte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

// Skip consumes n bytes from the stream.
func (s *StreamSource) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSkip, n)
	}
	if !s.marking && len(s.replay) == 0 {
		m, err := io.CopyN(io.Discard, s.rr, n)
		s.pos += m
		return endOfData(err)
	}
	var chunk [512]byte
	for n > 0 {
		k := min(n, int64(len(chunk)))
		if err := s.ReadFull(chunk[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

func (s *StreamSource) Mark() {
	s.marking = true
	s.record = s.record[:0]
}

func (s *StreamSource) Reset() error {
	if !s.marking {
		return ErrNoMark
	}
	replay := make([]byte, 0, len(s.record)+len(s.replay))
	replay = append(replay, s.record...)
	s.replay = append(replay, s.replay...)
	s.pos -= int64(len(s.record))
	s.record = s.record[:0]
	return nil
}

func (s *StreamSource) Unmark() {
	s.marking = false
	s.record = s.record[:0]
}

func (s *StreamSource) Position() int64 { return s.pos }
