package dds

import (
	"fmt"
	"math/bits"

	"github.com/woozymasta/bcn"
)

// Pixel format flags that bcn does not name.
const (
	pfAlpha = 0x2
	pfYUV   = 0x200
)

// DXGI formats with an uncompressed 8-bit per channel layout.
const (
	dxgiR8G8B8A8UNorm     = 28
	dxgiR8G8B8A8UNormSRGB = 29
	dxgiB8G8R8A8UNorm     = 87
	dxgiB8G8R8X8UNorm     = 88
	dxgiB8G8R8A8UNormSRGB = 91
)

// channelMask extracts one channel from a little-endian pixel word.
type channelMask struct {
	mask  uint32
	shift uint
	width uint
}

func newChannelMask(mask uint32) channelMask {
	if mask == 0 {
		return channelMask{}
	}
	shift := uint(bits.TrailingZeros32(mask))
	return channelMask{mask: mask, shift: shift, width: uint(bits.OnesCount32(mask >> shift))}
}

// value scales the channel to 8 bits.
func (c channelMask) value(p uint32) uint32 {
	v := (p & c.mask) >> c.shift
	switch {
	case c.width == 0:
		return 0
	case c.width == 8:
		return v
	case c.width > 8:
		return v >> (c.width - 8)
	default:
		return v * 0xFF / (1<<c.width - 1)
	}
}

// surface describes how to read one uncompressed pixel.
type surface struct {
	name       string
	bitCount   int
	r, g, b, a channelMask
	luminance  bool
	hasColor   bool
	hasAlpha   bool
}

func (s *surface) bytesPerPixel() int { return s.bitCount / 8 }

// rowPitch is the tightly packed byte length of one row.
func (s *surface) rowPitch(width int) int { return width * s.bytesPerPixel() }

// rgba converts a pixel word into 8-bit channels.
func (s *surface) rgba(p uint32) (r, g, b, a uint32) {
	a = 0xFF
	if s.hasAlpha {
		a = s.a.value(p)
	}
	switch {
	case s.luminance:
		l := s.r.value(p)
		return l, l, l, a
	case s.hasColor:
		return s.r.value(p), s.g.value(p), s.b.value(p), a
	default:
		return 0, 0, 0, a
	}
}

func maskSurface(name string, bitCount int, r, g, b, a uint32) *surface {
	return &surface{
		name:     name,
		bitCount: bitCount,
		r:        newChannelMask(r),
		g:        newChannelMask(g),
		b:        newChannelMask(b),
		a:        newChannelMask(a),
		hasColor: true,
		hasAlpha: a != 0,
	}
}

// detectSurface picks the pixel reader for the header. Block compressed
// formats are recognised through bcn and rejected.
func detectSurface(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (*surface, error) {
	if dx10 != nil {
		switch dx10.DXGIFormat {
		case dxgiR8G8B8A8UNorm, dxgiR8G8B8A8UNormSRGB:
			return maskSurface("RGBA8", 32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000), nil
		case dxgiB8G8R8A8UNorm, dxgiB8G8R8A8UNormSRGB:
			return maskSurface("BGRA8", 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000), nil
		case dxgiB8G8R8X8UNorm:
			return maskSurface("BGRX8", 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0), nil
		}
		if f := mapDxgiFormat(dx10.DXGIFormat); f != bcn.FormatUnknown {
			return nil, fmt.Errorf("%w: %s", ErrCompressedFormat, f)
		}
		return nil, fmt.Errorf("%w: DXGI %d", ErrPixelLayout, dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 {
		return nil, fmt.Errorf("%w: %s", ErrCompressedFormat, intToFourCC(pf.FourCC))
	}
	if pf.Flags&pfYUV != 0 {
		return nil, fmt.Errorf("%w: YUV", ErrPixelLayout)
	}

	switch pf.RGBBitCount {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrPixelLayout, pf.RGBBitCount)
	}
	bitCount := int(pf.RGBBitCount)
	alpha := uint32(0)
	if pf.Flags&(bcn.DDSPFAlphaPixels|pfAlpha) != 0 {
		alpha = pf.ABitMask
	}

	switch {
	case pf.Flags&bcn.DDSPFRGB != 0:
		if pf.RBitMask|pf.GBitMask|pf.BBitMask == 0 {
			return nil, fmt.Errorf("%w: RGB without masks", ErrPixelLayout)
		}
		return maskSurface(formatName(pf.RBitMask, pf.GBitMask, pf.BBitMask, alpha, bitCount), bitCount,
			pf.RBitMask, pf.GBitMask, pf.BBitMask, alpha), nil
	case pf.Flags&bcn.DDSPFLuminance != 0:
		s := maskSurface(fmt.Sprintf("L%d", bitCount), bitCount, pf.RBitMask, 0, 0, alpha)
		s.luminance = true
		if alpha != 0 {
			s.name = fmt.Sprintf("L%dA", bitCount)
		}
		return s, nil
	case pf.Flags&pfAlpha != 0:
		return &surface{
			name:     fmt.Sprintf("A%d", bitCount),
			bitCount: bitCount,
			a:        newChannelMask(pf.ABitMask),
			hasAlpha: true,
		}, nil
	}

	return nil, fmt.Errorf("%w: flags 0x%x", ErrPixelLayout, pf.Flags)
}

// formatName names common mask layouts and falls back to the bit count.
func formatName(r, g, b, a uint32, bitCount int) string {
	switch {
	case bitCount == 32 && r == 0x000000ff && g == 0x0000ff00 && b == 0x00ff0000:
		if a != 0 {
			return "RGBA8"
		}
		return "RGBX8"
	case bitCount == 32 && r == 0x00ff0000 && g == 0x0000ff00 && b == 0x000000ff:
		if a != 0 {
			return "BGRA8"
		}
		return "BGRX8"
	case bitCount == 24:
		return "RGB8"
	case bitCount == 16 && r == 0xf800 && g == 0x07e0 && b == 0x001f:
		return "R5G6B5"
	case bitCount == 16 && a == 0x8000:
		return "A1R5G5B5"
	case bitCount == 16 && a == 0xf000:
		return "A4R4G4B4"
	default:
		return fmt.Sprintf("RGB%d", bitCount)
	}
}

// mapDxgiFormat maps block compressed DXGI formats to bcn formats.
func mapDxgiFormat(dxgiFormat uint32) bcn.Format {
	switch dxgiFormat {
	case 71, 72:
		return bcn.FormatDXT1
	case 74, 75:
		return bcn.FormatDXT3
	case 77, 78:
		return bcn.FormatDXT5
	case 80, 81:
		return bcn.FormatBC4
	case 83, 84:
		return bcn.FormatBC5
	default:
		return bcn.FormatUnknown
	}
}

func intToFourCC(value uint32) string {
	return string([]byte{
		byte(value & 0xff),
		byte((value >> 8) & 0xff),
		byte((value >> 16) & 0xff),
		byte((value >> 24) & 0xff),
	})
}

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

func enfusionReserved1() [11]uint32 {
	return [11]uint32{
		0,
		makeFourCC('E', 'N', 'F', '1'),
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
}

// makeDDSHeader builds a single level header for a 32-bit RGBA8 or BGRA8
// surface. EDDS headers carry the Enfusion marker in Reserved1.
func makeDDSHeader(width, height uint32, format bcn.Format, edds bool) (*bcn.DDSHeader, error) {
	hdr := &bcn.DDSHeader{
		Size:              bcn.DDSHeaderSize,
		Flags:             bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat | bcn.DDSFlagPitch,
		Height:            height,
		Width:             width,
		PitchOrLinearSize: width * 4,
		Depth:             1,
		MipMapCount:       1,
		Caps:              bcn.DDSCapsTexture,
	}
	if edds {
		hdr.Reserved1 = enfusionReserved1()
	}

	pf := &hdr.PixelFormat
	pf.Size = bcn.DDSPixelFormatSize
	pf.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
	pf.RGBBitCount = 32
	pf.ABitMask = 0xff000000
	pf.GBitMask = 0x0000ff00

	switch format {
	case bcn.FormatRGBA8:
		pf.RBitMask = 0x000000ff
		pf.BBitMask = 0x00ff0000
	case bcn.FormatBGRA8:
		pf.RBitMask = 0x00ff0000
		pf.BBitMask = 0x000000ff
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}

	return hdr, nil
}
