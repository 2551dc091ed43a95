package dds

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/woozymasta/rawimg/binio"
)

const (
	// BlockMagicCOPY marks an uncompressed block.
	BlockMagicCOPY = "COPY"
	// BlockMagicLZ4 marks an LZ4-compressed block.
	BlockMagicLZ4 = "LZ4 "

	// ChunkSize is the Enfusion chunk size for LZ4 streams.
	ChunkSize = 64 * 1024

	chunkLast = 0x80
	// LZ4 output grows by at most 255 bytes per input byte.
	maxLZ4Expansion = 255
	// Chunks that shrink less than this are stored as COPY.
	minRatio = 0.85
	// Payloads below this size are always stored as COPY.
	minCompressSize = 1024
)

// Block is one mip level body. For LZ4 blocks Data is the chunk stream
// without the leading uncompressed size.
type Block struct {
	Magic            string
	Data             []byte
	Size             int32
	UncompressedSize int32
}

type blockHeader struct {
	Magic string
	Size  int32
}

// readBlockTable reads count table entries: a 4 byte magic and an int32
// body size each, smallest mip first.
func readBlockTable(r *binio.Reader, count uint32) ([]blockHeader, error) {
	if rem, ok := r.Remaining(); ok && int64(count)*8 > rem {
		return nil, fmt.Errorf("%w: %d entries, %d bytes left", ErrBlockTableRead, count, rem)
	}

	hdrs := make([]blockHeader, 0, count)
	for i := range count {
		magic, err := r.ReadString(4)
		if err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableRead, i, err)
		}
		size, err := r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableRead, i, err)
		}

		if magic != BlockMagicCOPY && magic != BlockMagicLZ4 {
			return nil, fmt.Errorf("%w: %d: %q", ErrBlockTableUnknownMagic, i, magic)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: %d: %d", ErrBlockTableInvalidSize, i, size)
		}

		hdrs = append(hdrs, blockHeader{Magic: magic, Size: size})
	}

	return hdrs, nil
}

// readBlockBody reads the body for h. LZ4 bodies start with the
// uncompressed size when it is present.
func readBlockBody(r *binio.Reader, h blockHeader) (*Block, error) {
	data, err := r.ReadBytes(int(h.Size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBlockBodyRead, h.Magic, err)
	}

	return &Block{Magic: h.Magic, Size: h.Size, Data: data}, nil
}

// writeBlock writes the block body (no table entry).
func writeBlock(w *binio.Writer, block *Block) error {
	if block.Magic == BlockMagicLZ4 {
		if err := w.WriteInt32(block.UncompressedSize); err != nil {
			return err
		}
	}
	_, err := w.Write(block.Data)
	return err
}

// compressBlock compresses raw data into an LZ4 chunk stream, or returns a
// COPY block when compression does not pay off.
func compressBlock(data []byte) (*Block, error) {
	uncompressedSize, err := i32FromInt(len(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(data))
	}
	copyBlock := &Block{Magic: BlockMagicCOPY, Size: uncompressedSize, Data: data}

	if len(data) < minCompressSize {
		return copyBlock, nil
	}

	w := binio.NewBufferWriter(binio.LittleEndian)
	ok, err := writeChunkStream(w, data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return copyBlock, nil
	}

	stream := w.Bytes()
	total := 4 + len(stream)
	if float64(total) > float64(len(data))*minRatio {
		return copyBlock, nil
	}
	size, err := i32FromInt(total)
	if err != nil {
		return nil, err
	}

	return &Block{
		Magic:            BlockMagicLZ4,
		Size:             size,
		UncompressedSize: uncompressedSize,
		Data:             stream,
	}, nil
}

// writeChunkStream writes data to w as LZ4 chunks of at most ChunkSize. It
// reports false as soon as a chunk compresses worse than minRatio.
func writeChunkStream(w *binio.Writer, data []byte) (bool, error) {
	scratch := make([]byte, lz4.CompressBlockBound(ChunkSize))

	for start := 0; start < len(data); start += ChunkSize {
		end := min(start+ChunkSize, len(data))
		chunk := data[start:end]

		n, err := lz4.CompressBlockHC(chunk, scratch, 0, nil, nil)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		if n == 0 || float64(n) > float64(len(chunk))*minRatio {
			return false, nil
		}

		flags := byte(0)
		if end == len(data) {
			flags = chunkLast
		}
		// 24-bit size and a flag byte; n is bounded by CompressBlockBound(ChunkSize)
		if _, err := w.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), flags}); err != nil {
			return false, fmt.Errorf("%w: chunk at %d: %v", ErrWriteChunkStream, start, err)
		}
		if _, err := w.Write(scratch[:n]); err != nil {
			return false, fmt.Errorf("%w: chunk at %d: %v", ErrWriteChunkStream, start, err)
		}
	}
	return true, nil
}

// dictionary keeps the last 64KB of decoded output for LZ4 back references
// across chunks.
type dictionary struct {
	buf []byte
	n   int
}

func newDictionary() *dictionary {
	return &dictionary{buf: make([]byte, ChunkSize)}
}

func (d *dictionary) bytes() []byte { return d.buf[:d.n] }

func (d *dictionary) append(p []byte) {
	if len(p) >= len(d.buf) {
		d.n = copy(d.buf, p[len(p)-len(d.buf):])
		return
	}
	if over := d.n + len(p) - len(d.buf); over > 0 {
		copy(d.buf, d.buf[over:d.n])
		d.n -= over
	}
	d.n += copy(d.buf[d.n:], p)
}

// decompressBlock inflates an EDDS block to expected bytes.
func decompressBlock(block *Block, expected int) ([]byte, error) {
	switch block.Magic {
	case BlockMagicCOPY:
		if len(block.Data) != expected {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCopySizeMismatch, expected, len(block.Data))
		}
		out := make([]byte, len(block.Data))
		copy(out, block.Data)
		return out, nil
	case BlockMagicLZ4:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBlockTableUnknownMagic, block.Magic)
	}

	target := expected
	if block.UncompressedSize > 0 {
		target = int(block.UncompressedSize)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTargetSize, target)
	}

	data := block.Data
	if len(data) >= 8 {
		// Bodies read from a file still carry the uncompressed size.
		peek := int(binio.LittleEndian.Uint32(data[:4]))
		c0 := int(data[4]) | int(data[5])<<8 | int(data[6])<<16
		if (peek == expected || peek == target) && c0 > 0 && c0 < 1<<20 {
			target = peek
			data = data[4:]
		}
	}

	if target > maxLZ4Expansion*len(data)+ChunkSize {
		return nil, fmt.Errorf("%w: %d bytes from %d compressed", ErrInvalidTargetSize, target, len(data))
	}

	r := binio.FromBytes(data, binio.LittleEndian)
	dict := newDictionary()
	out := make([]byte, target)
	written := 0

	for {
		var hdr [4]byte
		if err := r.ReadFull(hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: chunk header: %v", ErrChunkStreamTruncated, err)
		}
		size := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^chunkLast != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownLZ4Flags, flags)
		}
		rem, _ := r.Remaining()
		if size <= 0 || int64(size) > rem {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, size, rem)
		}
		compressed, err := r.ReadBytes(size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkStreamTruncated, err)
		}

		if written >= target {
			return nil, ErrDecodeOverrun
		}
		dst := out[written:min(written+ChunkSize, target)]
		n, err := lz4.UncompressBlockWithDict(compressed, dst, dict.bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		dict.append(out[written : written+n])
		written += n

		if flags&chunkLast != 0 {
			break
		}
	}

	if written != target {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, target, written)
	}
	if rem, _ := r.Remaining(); rem != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after decode", ErrBlockLengthMismatch, rem)
	}

	return out, nil
}
