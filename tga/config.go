package tga

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/woozymasta/rawimg/binio"
)

// DecodeConfig returns the dimensions of a TGA image without decoding it.
// TGA has no signature, so the format is not registered with the image package.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(binio.FromStream(r, binio.LittleEndian))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if !h.ImageType.known() {
		return image.Config{}, fmt.Errorf("%w: %d", ErrUnknownImageType, uint8(h.ImageType))
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
