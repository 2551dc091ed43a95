package tga

import (
	"fmt"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

// Decode decodes the TGA image in buf into pixels packed with f.
func Decode(buf []byte, f *pixel.Format) (*pixel.Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", pixel.ErrInvalidFormat)
	}

	r := binio.FromBytes(buf, binio.LittleEndian)
	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if err := r.Skip(int64(h.IDLength)); err != nil {
		return nil, fmt.Errorf("%w: image ID: %v", ErrPixelDataShort, err)
	}

	width, height := int(h.Width), int(h.Height)

	var (
		elemSize int
		read     elementReader
	)

	switch h.ImageType {
	case TypeColorMap, TypeColorMapRLE:
		palette, err := readColorMap(r, h, f)
		if err != nil {
			return nil, err
		}
		switch h.PixelDepth {
		case 8:
			elemSize = 1
		case 16:
			elemSize = 2
		default:
			return nil, fmt.Errorf("%w: colormap index depth %d", ErrUnsupportedDepth, h.PixelDepth)
		}
		read = colorMapReader(palette, elemSize, int(h.ColorMapOrigin))
	case TypeTrueColor, TypeTrueColorRLE:
		if err := skipColorMap(r, h); err != nil {
			return nil, err
		}
		switch h.PixelDepth {
		case 24:
			elemSize, read = 3, bgrReader(f)
		case 32:
			elemSize, read = 4, bgraReader(f)
		default:
			return nil, fmt.Errorf("%w: truecolor depth %d", ErrUnsupportedDepth, h.PixelDepth)
		}
	case TypeGrayscale, TypeGrayscaleRLE:
		if err := skipColorMap(r, h); err != nil {
			return nil, err
		}
		switch h.PixelDepth {
		case 8:
			elemSize, read = 1, grayReader(f)
		case 16:
			elemSize, read = 2, grayAlphaReader(f)
		default:
			return nil, fmt.Errorf("%w: grayscale depth %d", ErrUnsupportedDepth, h.PixelDepth)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownImageType, uint8(h.ImageType))
	}

	data, err := pixelData(r, h.ImageType.RLE(), width*height, elemSize)
	if err != nil {
		return nil, err
	}

	pix := make([]uint32, width*height)
	if err := place(pix, width, height, h.Descriptor, func(k int) (uint32, error) {
		return read(data, k)
	}); err != nil {
		return nil, err
	}

	return pixel.New(pix, width, height, f)
}

// pixelData returns count elements of size bytes, expanding RLE packets first.
func pixelData(r *binio.Reader, rle bool, count, size int) ([]byte, error) {
	n := count * size
	if !rle {
		data, err := r.ReadBytes(n)
		if err != nil {
			return nil, fmt.Errorf("%w: need %d bytes: %v", ErrPixelDataShort, n, err)
		}
		return data, nil
	}
	return decodeRLE(r, n, size)
}

// place walks the elements in file order and stores each one at its
// top-down, left-to-right position for the origin selected by descriptor.
func place(pix []uint32, width, height int, descriptor uint8, src func(k int) (uint32, error)) error {
	var err error
	switch {
	case descriptor&RightOrigin != 0 && descriptor&UpperOrigin != 0:
		// upper right
		for i := 0; i < height && err == nil; i++ {
			for j := 0; j < width && err == nil; j++ {
				pix[width*i+(width-j-1)], err = src(width*i + j)
			}
		}
	case descriptor&RightOrigin != 0:
		// lower right
		for i := 0; i < height && err == nil; i++ {
			for j := 0; j < width && err == nil; j++ {
				pix[width*(height-i-1)+(width-j-1)], err = src(width*i + j)
			}
		}
	case descriptor&UpperOrigin != 0:
		// upper left
		for i := 0; i < height && err == nil; i++ {
			for j := 0; j < width && err == nil; j++ {
				pix[width*i+j], err = src(width*i + j)
			}
		}
	default:
		// lower left
		for i := 0; i < height && err == nil; i++ {
			for j := 0; j < width && err == nil; j++ {
				pix[width*(height-i-1)+j], err = src(width*i + j)
			}
		}
	}
	return err
}

// elementReader converts element k of the pixel data into a packed pixel.
type elementReader func(data []byte, k int) (uint32, error)

func bgrReader(f *pixel.Format) elementReader {
	return func(data []byte, k int) (uint32, error) {
		e := data[3*k : 3*k+3]
		return f.Pixel(uint32(e[2]), uint32(e[1]), uint32(e[0]), 0xFF), nil
	}
}

func bgraReader(f *pixel.Format) elementReader {
	return func(data []byte, k int) (uint32, error) {
		e := data[4*k : 4*k+4]
		return f.Pixel(uint32(e[2]), uint32(e[1]), uint32(e[0]), uint32(e[3])), nil
	}
}

func grayReader(f *pixel.Format) elementReader {
	return func(data []byte, k int) (uint32, error) {
		v := uint32(data[k])
		return f.Pixel(v, v, v, 0xFF), nil
	}
}

func grayAlphaReader(f *pixel.Format) elementReader {
	return func(data []byte, k int) (uint32, error) {
		v, a := uint32(data[2*k]), uint32(data[2*k+1])
		return f.Pixel(v, v, v, a), nil
	}
}

// colorMapReader resolves palette indices. Indices below the colormap
// origin resolve to opaque white.
func colorMapReader(palette []uint32, size, origin int) elementReader {
	return func(data []byte, k int) (uint32, error) {
		idx := int(data[size*k])
		if size == 2 {
			idx |= int(data[size*k+1]) << 8
		}
		idx -= origin
		if idx < 0 {
			return 0xFFFFFFFF, nil
		}
		if idx >= len(palette) {
			return 0, fmt.Errorf("%w: %d of %d", ErrColorMapIndex, idx, len(palette))
		}
		return palette[idx], nil
	}
}

// readColorMap reads the palette that precedes the pixel data.
func readColorMap(r *binio.Reader, h *Header, f *pixel.Format) ([]uint32, error) {
	var entry int
	switch h.ColorMapDepth {
	case 24:
		entry = 3
	case 32:
		entry = 4
	default:
		return nil, fmt.Errorf("%w: colormap depth %d", ErrUnsupportedDepth, h.ColorMapDepth)
	}

	raw, err := r.ReadBytes(entry * int(h.ColorMapLength))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrColorMapShort, err)
	}

	palette := make([]uint32, h.ColorMapLength)
	for i := range palette {
		e := raw[entry*i : entry*i+entry]
		a := uint32(0xFF)
		if entry == 4 {
			a = uint32(e[3])
		}
		palette[i] = f.Pixel(uint32(e[2]), uint32(e[1]), uint32(e[0]), a)
	}
	return palette, nil
}

// skipColorMap skips a colormap that an image type does not use.
func skipColorMap(r *binio.Reader, h *Header) error {
	if h.ColorMapType == 0 {
		return nil
	}
	n := int64(h.ColorMapLength) * int64((int(h.ColorMapDepth)+7)/8)
	if err := r.Skip(n); err != nil {
		return fmt.Errorf("%w: %v", ErrColorMapShort, err)
	}
	return nil
}
