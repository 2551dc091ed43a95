package psd

import (
	"fmt"

	"github.com/woozymasta/rawimg/binio"
)

// Signature is "8BPS" read as a big-endian uint32.
const Signature uint32 = 0x38425053

const (
	signature8BIM = "8BIM"
	signature8B64 = "8B64"

	maxChannels  = 56
	maxDimension = 30000
	// Color mode data is a 768 byte palette for indexed images and a short
	// duotone curve block otherwise.
	maxColorModeData = 1 << 16
)

// ColorMode is the PSD color mode tag.
type ColorMode uint16

const (
	ColorModeBitmap       ColorMode = 0
	ColorModeGrayscale    ColorMode = 1
	ColorModeIndexed      ColorMode = 2
	ColorModeRGB          ColorMode = 3
	ColorModeCMYK         ColorMode = 4
	ColorModeMultichannel ColorMode = 7
	ColorModeDuotone      ColorMode = 8
	ColorModeLab          ColorMode = 9
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeBitmap:
		return "bitmap"
	case ColorModeGrayscale:
		return "grayscale"
	case ColorModeIndexed:
		return "indexed"
	case ColorModeRGB:
		return "rgb"
	case ColorModeCMYK:
		return "cmyk"
	case ColorModeMultichannel:
		return "multichannel"
	case ColorModeDuotone:
		return "duotone"
	case ColorModeLab:
		return "lab"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint16(m))
	}
}

// Supported reports whether the decoder can recombine this mode.
func (m ColorMode) Supported() bool {
	return m == ColorModeGrayscale || m == ColorModeIndexed || m == ColorModeRGB
}

func (m ColorMode) known() bool {
	switch m {
	case ColorModeBitmap, ColorModeGrayscale, ColorModeIndexed, ColorModeRGB,
		ColorModeCMYK, ColorModeMultichannel, ColorModeDuotone, ColorModeLab:
		return true
	}
	return false
}

// Header is the fixed 26 byte file header.
type Header struct {
	Version   uint16
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     uint16
	ColorMode ColorMode
}

// readHeader reads and validates the fixed header. A wrong signature fails
// before any other field is read.
func readHeader(r *binio.Reader) (*Header, error) {
	sig, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if sig != Signature {
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidSignature, sig)
	}

	var raw [22]byte
	if err := r.ReadFull(raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	be := binio.BigEndian
	h := &Header{
		Version: be.Uint16(raw[0:2]),
		// raw[2:8] is reserved
		Channels:  be.Uint16(raw[8:10]),
		Height:    be.Uint32(raw[10:14]),
		Width:     be.Uint32(raw[14:18]),
		Depth:     be.Uint16(raw[18:20]),
		ColorMode: ColorMode(be.Uint16(raw[20:22])),
	}

	switch h.Version {
	case 1:
	case 2:
		return nil, ErrPSBNotSupported
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	if h.Channels < 1 || h.Channels > maxChannels {
		return nil, fmt.Errorf("%w: %d", ErrChannelCount, h.Channels)
	}
	if h.Width < 1 || h.Width > maxDimension || h.Height < 1 || h.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, h.Width, h.Height)
	}
	if !h.ColorMode.known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColorMode, uint16(h.ColorMode))
	}

	return h, nil
}

// checkDecodable rejects headers the pixel recombination cannot handle.
func (h *Header) checkDecodable() error {
	if !h.ColorMode.Supported() {
		return fmt.Errorf("%w: %s", ErrColorMode, h.ColorMode)
	}
	if h.Depth != 8 {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedDepth, h.Depth)
	}
	if h.ColorMode == ColorModeRGB && h.Channels < 3 {
		return fmt.Errorf("%w: RGB with %d channels", ErrChannelCount, h.Channels)
	}
	return nil
}
