// Package pixel describes packed 32-bit pixels and the decoded image value
// every decoder in this module produces.
package pixel

import (
	"fmt"
	"sort"

	"github.com/woozymasta/rawimg/imgerr"
)

// ErrInvalidFormat indicates channel shifts that are not disjoint byte positions.
var ErrInvalidFormat = fmt.Errorf("%w: invalid pixel format", imgerr.ErrInvalidArgument)

// Format maps the red, green, blue and alpha channels to byte positions in a
// 32-bit word. Formats are immutable and shared by pointer; Image compares
// them by identity.
type Format struct {
	redShift   uint
	greenShift uint
	blueShift  uint
	alphaShift uint
}

var (
	// ARGB packs pixels as 0xAARRGGBB.
	ARGB = &Format{redShift: 16, greenShift: 8, blueShift: 0, alphaShift: 24}
	// ABGR packs pixels as 0xAABBGGRR, which is RGBA byte order in little-endian memory.
	ABGR = &Format{redShift: 0, greenShift: 8, blueShift: 16, alphaShift: 24}
)

// NewFormat returns a Format with the given shifts. Each shift must be one
// of 0, 8, 16 or 24 and no two channels may share a position.
func NewFormat(redShift, greenShift, blueShift, alphaShift uint) (*Format, error) {
	var used uint
	for _, s := range [...]uint{redShift, greenShift, blueShift, alphaShift} {
		if s > 24 || s%8 != 0 {
			return nil, fmt.Errorf("%w: shift %d", ErrInvalidFormat, s)
		}
		bit := uint(1) << (s / 8)
		if used&bit != 0 {
			return nil, fmt.Errorf("%w: shift %d used twice", ErrInvalidFormat, s)
		}
		used |= bit
	}

	return &Format{
		redShift:   redShift,
		greenShift: greenShift,
		blueShift:  blueShift,
		alphaShift: alphaShift,
	}, nil
}

func (f *Format) RedShift() uint   { return f.redShift }
func (f *Format) GreenShift() uint { return f.greenShift }
func (f *Format) BlueShift() uint  { return f.blueShift }
func (f *Format) AlphaShift() uint { return f.alphaShift }

func (f *Format) RedMask() uint32   { return 0xFF << f.redShift }
func (f *Format) GreenMask() uint32 { return 0xFF << f.greenShift }
func (f *Format) BlueMask() uint32  { return 0xFF << f.blueShift }
func (f *Format) AlphaMask() uint32 { return 0xFF << f.alphaShift }

func (f *Format) Red(p uint32) uint32   { return (p & f.RedMask()) >> f.redShift }
func (f *Format) Green(p uint32) uint32 { return (p & f.GreenMask()) >> f.greenShift }
func (f *Format) Blue(p uint32) uint32  { return (p & f.BlueMask()) >> f.blueShift }
func (f *Format) Alpha(p uint32) uint32 { return (p & f.AlphaMask()) >> f.alphaShift }

// Pixel packs the four channel values. Inputs are not masked: values above
// 0xFF spill into neighbouring channels.
func (f *Format) Pixel(r, g, b, a uint32) uint32 {
	return r<<f.redShift | g<<f.greenShift | b<<f.blueShift | a<<f.alphaShift
}

// String returns the channel order from the most significant byte, e.g. "ARGB".
func (f *Format) String() string {
	type ch struct {
		name  byte
		shift uint
	}
	chs := []ch{{'R', f.redShift}, {'G', f.greenShift}, {'B', f.blueShift}, {'A', f.alphaShift}}
	sort.Slice(chs, func(i, j int) bool { return chs[i].shift > chs[j].shift })

	b := make([]byte, len(chs))
	for i, c := range chs {
		b[i] = c.name
	}
	return string(b)
}
