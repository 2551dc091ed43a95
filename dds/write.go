package dds

import (
	"bytes"
	"fmt"
	"io"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

// WriteOptions configures DDS and EDDS writing.
type WriteOptions struct {
	// Format is bcn.FormatBGRA8 (default) or bcn.FormatRGBA8.
	Format bcn.Format
	// EDDS writes an Enfusion block table and body after the header.
	EDDS bool
	// Compress stores the EDDS body as an LZ4 chunk stream when it shrinks
	// enough; otherwise a COPY block is written.
	Compress bool
}

func (o *WriteOptions) format() bcn.Format {
	if o == nil || o.Format == bcn.FormatUnknown {
		return bcn.FormatBGRA8
	}
	return o.Format
}

// Encode returns img as an uncompressed BGRA8 DDS file.
func Encode(img *pixel.Image) ([]byte, error) {
	return EncodeWithOptions(img, nil)
}

// EncodeEDDS returns img as a single level EDDS file.
func EncodeEDDS(img *pixel.Image, compress bool) ([]byte, error) {
	return EncodeWithOptions(img, &WriteOptions{EDDS: true, Compress: compress})
}

// EncodeWithOptions returns img encoded with opts. Nil opts means a plain
// BGRA8 DDS.
func EncodeWithOptions(img *pixel.Image, opts *WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes img to w.
func Write(w io.Writer, img *pixel.Image, opts *WriteOptions) error {
	if img == nil || img.Format() == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidFormat)
	}
	format := opts.format()
	edds := opts != nil && opts.EDDS

	w32, err := u32FromInt(img.Width)
	if err != nil {
		return err
	}
	h32, err := u32FromInt(img.Height)
	if err != nil {
		return err
	}
	header, err := makeDDSHeader(w32, h32, format, edds)
	if err != nil {
		return err
	}

	payload := surfaceBytes(img, format)

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHeader, err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHeader, err)
	}

	bw := binio.NewStreamWriter(w, binio.LittleEndian)
	if !edds {
		if _, err := bw.Write(payload); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteData, err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteData, err)
		}
		return nil
	}

	block := &Block{Magic: BlockMagicCOPY, Data: payload}
	if opts.Compress {
		if block, err = compressBlock(payload); err != nil {
			return err
		}
	} else if block.Size, err = i32FromInt(len(payload)); err != nil {
		return fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(payload))
	}

	if _, err := bw.WriteString(block.Magic); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteBlock, err)
	}
	if err := bw.WriteInt32(block.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteBlock, err)
	}
	if err := writeBlock(bw, block); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteBlock, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteBlock, err)
	}
	return nil
}

// surfaceBytes lays out img as 32-bit RGBA8 or BGRA8 rows.
func surfaceBytes(img *pixel.Image, format bcn.Format) []byte {
	f := img.Format()
	out := make([]byte, 0, len(img.Pix)*4)
	for _, p := range img.Pix {
		r, g, b, a := byte(f.Red(p)), byte(f.Green(p)), byte(f.Blue(p)), byte(f.Alpha(p))
		if format == bcn.FormatRGBA8 {
			out = append(out, r, g, b, a)
		} else {
			out = append(out, b, g, r, a)
		}
	}
	return out
}
