package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// ErrPixelCount indicates a pixel slice whose length is not width*height.
var ErrPixelCount = fmt.Errorf("%w: pixel count mismatch", ErrInvalidFormat)

// Image is a decoded raster: row-major packed pixels, top row first,
// interpreted through its Format. The mutators rewrite Pix in place.
type Image struct {
	Pix    []uint32
	Width  int
	Height int
	format *Format
}

// New wraps pix without copying it.
func New(pix []uint32, width, height int, f *Format) (*Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", ErrInvalidFormat)
	}
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", ErrPixelCount, width, height, len(pix))
	}
	return &Image{Pix: pix, Width: width, Height: height, format: f}, nil
}

// Format returns the format describing Pix.
func (m *Image) Format() *Format { return m.format }

// ChangeFormat repacks every pixel into f. It is a no-op when f is the
// current format pointer; an equal but distinct Format still converts.
func (m *Image) ChangeFormat(f *Format) error {
	if f == nil {
		return fmt.Errorf("%w: nil format", ErrInvalidFormat)
	}
	if m.format == f {
		return nil
	}
	src := m.format
	for i, p := range m.Pix {
		m.Pix[i] = f.Pixel(src.Red(p), src.Green(p), src.Blue(p), src.Alpha(p))
	}
	m.format = f
	return nil
}

// MultiplyAlpha scales every alpha value by alpha in [0, 1].
func (m *Image) MultiplyAlpha(alpha float32) {
	rgbMask := ^m.format.AlphaMask()
	shift := m.format.alphaShift
	for i, p := range m.Pix {
		a := int32(255 * alpha * (float32(m.format.Alpha(p)) / 255))
		a = max(0, min(a, 0xFF))
		m.Pix[i] = p&rgbMask | uint32(a)<<shift
	}
}

// MultiplyAlpha8 scales every alpha value by alpha/255.
func (m *Image) MultiplyAlpha8(alpha uint8) {
	m.MultiplyAlpha(float32(alpha) / 255)
}

// SetAlpha replaces every alpha value.
func (m *Image) SetAlpha(alpha uint8) {
	rgbMask := ^m.format.AlphaMask()
	a := uint32(alpha) << m.format.alphaShift
	for i, p := range m.Pix {
		m.Pix[i] = p&rgbMask | a
	}
}

// RemoveTransparency makes every pixel fully opaque.
func (m *Image) RemoveTransparency() {
	alphaMask := m.format.AlphaMask()
	for i, p := range m.Pix {
		m.Pix[i] = p | alphaMask
	}
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.NRGBA{}
	}
	return m.NRGBAAt(x, y)
}

// NRGBAAt returns the pixel at (x, y), which must be in bounds.
func (m *Image) NRGBAAt(x, y int) color.NRGBA {
	p := m.Pix[y*m.Width+x]
	f := m.format
	return color.NRGBA{
		R: uint8(f.Red(p)),
		G: uint8(f.Green(p)),
		B: uint8(f.Blue(p)),
		A: uint8(f.Alpha(p)),
	}
}

// NRGBA copies the image into a standard library NRGBA image.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(m.Bounds())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := m.NRGBAAt(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
		}
	}
	return out
}

// FromImage converts any image into an Image packed with f.
func FromImage(img image.Image, f *Format) (*Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", ErrInvalidFormat)
	}
	if m, ok := img.(*Image); ok {
		pix := make([]uint32, len(m.Pix))
		copy(pix, m.Pix)
		out := &Image{Pix: pix, Width: m.Width, Height: m.Height, format: m.format}
		return out, out.ChangeFormat(f)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint32, w*h)
	nrgba, fast := img.(*image.NRGBA)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c color.NRGBA
			if fast {
				c = nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			} else {
				c = color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			}
			pix[y*w+x] = f.Pixel(uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A))
		}
	}

	return &Image{Pix: pix, Width: w, Height: h, format: f}, nil
}
