package tga

import (
	"fmt"

	"github.com/woozymasta/rawimg/binio"
)

// HeaderSize is the fixed size of the TGA file header.
const HeaderSize = 18

// ImageType is the TGA data type code.
type ImageType uint8

const (
	TypeNoImage      ImageType = 0
	TypeColorMap     ImageType = 1
	TypeTrueColor    ImageType = 2
	TypeGrayscale    ImageType = 3
	TypeColorMapRLE  ImageType = 9
	TypeTrueColorRLE ImageType = 10
	TypeGrayscaleRLE ImageType = 11
)

// Descriptor bits selecting the corner of the first stored pixel.
const (
	RightOrigin = 0x10
	UpperOrigin = 0x20
)

func (t ImageType) String() string {
	switch t {
	case TypeNoImage:
		return "none"
	case TypeColorMap:
		return "colormap"
	case TypeTrueColor:
		return "truecolor"
	case TypeGrayscale:
		return "grayscale"
	case TypeColorMapRLE:
		return "colormap-rle"
	case TypeTrueColorRLE:
		return "truecolor-rle"
	case TypeGrayscaleRLE:
		return "grayscale-rle"
	default:
		return fmt.Sprintf("ImageType(%d)", uint8(t))
	}
}

// RLE reports whether the pixel data is run-length encoded.
func (t ImageType) RLE() bool { return t&8 != 0 }

func (t ImageType) known() bool {
	switch t {
	case TypeColorMap, TypeTrueColor, TypeGrayscale,
		TypeColorMapRLE, TypeTrueColorRLE, TypeGrayscaleRLE:
		return true
	}
	return false
}

// Header is the 18 byte TGA file header.
type Header struct {
	IDLength       uint8
	ColorMapType   uint8
	ImageType      ImageType
	ColorMapOrigin uint16
	ColorMapLength uint16
	ColorMapDepth  uint8
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelDepth     uint8
	Descriptor     uint8
}

// ReadHeader parses the header at the start of buf without decoding pixels.
func ReadHeader(buf []byte) (*Header, error) {
	r := binio.FromBytes(buf, binio.LittleEndian)
	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	return h, nil
}

func readHeader(r *binio.Reader) (*Header, error) {
	var raw [HeaderSize]byte
	if err := r.ReadFull(raw[:]); err != nil {
		return nil, err
	}

	le := binio.LittleEndian
	return &Header{
		IDLength:       raw[0],
		ColorMapType:   raw[1],
		ImageType:      ImageType(raw[2]),
		ColorMapOrigin: le.Uint16(raw[3:5]),
		ColorMapLength: le.Uint16(raw[5:7]),
		ColorMapDepth:  raw[7],
		XOrigin:        le.Uint16(raw[8:10]),
		YOrigin:        le.Uint16(raw[10:12]),
		Width:          le.Uint16(raw[12:14]),
		Height:         le.Uint16(raw[14:16]),
		PixelDepth:     raw[16],
		Descriptor:     raw[17],
	}, nil
}

func writeHeader(w *binio.Writer, h *Header) error {
	for _, err := range []error{
		w.WriteByte(h.IDLength),
		w.WriteByte(h.ColorMapType),
		w.WriteByte(byte(h.ImageType)),
		w.WriteUint16(h.ColorMapOrigin),
		w.WriteUint16(h.ColorMapLength),
		w.WriteByte(h.ColorMapDepth),
		w.WriteUint16(h.XOrigin),
		w.WriteUint16(h.YOrigin),
		w.WriteUint16(h.Width),
		w.WriteUint16(h.Height),
		w.WriteByte(h.PixelDepth),
		w.WriteByte(h.Descriptor),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
