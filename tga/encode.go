package tga

import (
	"fmt"
	"io"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

// EncodeMode selects raw or run-length encoded output.
type EncodeMode int

const (
	// EncodeRaw writes uncompressed truecolor data (type 2).
	EncodeRaw EncodeMode = iota
	// EncodeRLE writes run-length encoded truecolor data (type 10).
	EncodeRLE
)

func (m EncodeMode) String() string {
	switch m {
	case EncodeRaw:
		return "raw"
	case EncodeRLE:
		return "rle"
	default:
		return fmt.Sprintf("EncodeMode(%d)", int(m))
	}
}

// footer marks a TGA 2.0 file with no extension or developer area.
var footer = []byte("\x00\x00\x00\x00\x00\x00\x00\x00TRUEVISION-XFILE.\x00")

// Encode writes img as a 32-bit BGRA TGA with an upper-left origin.
func Encode(img *pixel.Image, mode EncodeMode) ([]byte, error) {
	w := binio.NewBufferWriter(binio.LittleEndian)
	if err := encode(w, img, mode); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo writes the encoding of img to w.
func EncodeTo(w io.Writer, img *pixel.Image, mode EncodeMode) error {
	bw := binio.NewStreamWriter(w, binio.LittleEndian)
	if err := encode(bw, img, mode); err != nil {
		return err
	}
	return bw.Flush()
}

func encode(w *binio.Writer, img *pixel.Image, mode EncodeMode) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", pixel.ErrInvalidFormat)
	}
	if mode != EncodeRaw && mode != EncodeRLE {
		return fmt.Errorf("%w: %d", ErrUnknownEncodeMode, int(mode))
	}

	width, err := u16FromInt(img.Width)
	if err != nil {
		return err
	}
	height, err := u16FromInt(img.Height)
	if err != nil {
		return err
	}

	h := &Header{
		ImageType:  TypeTrueColor,
		Width:      width,
		Height:     height,
		PixelDepth: 32,
		Descriptor: UpperOrigin | 8,
	}
	if mode == EncodeRLE {
		h.ImageType = TypeTrueColorRLE
	}
	if err := writeHeader(w, h); err != nil {
		return err
	}

	f := img.Format()
	line := make([]byte, 4*img.Width)
	var packed []byte
	for y := 0; y < img.Height; y++ {
		for x, p := range img.Pix[y*img.Width : (y+1)*img.Width] {
			line[4*x+0] = byte(f.Blue(p))
			line[4*x+1] = byte(f.Green(p))
			line[4*x+2] = byte(f.Red(p))
			line[4*x+3] = byte(f.Alpha(p))
		}

		out := line
		if mode == EncodeRLE {
			packed = encodeRLE(packed[:0], line, 4)
			out = packed
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}

	_, err = w.Write(footer)
	return err
}

func u16FromInt(n int) (uint16, error) {
	if n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("%w: %d", ErrImageTooLarge, n)
	}
	return uint16(n), nil
}
