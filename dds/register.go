package dds

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/rawimg/pixel"
)

func init() {
	image.RegisterFormat("dds", "DDS ", decodeImage, DecodeConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(buf, pixel.ABGR)
}

// DecodeConfig reads the DDS header from r without decoding the surface.
func DecodeConfig(r io.Reader) (image.Config, error) {
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}

	return image.Config{
		Width:      int(header.Width),
		Height:     int(header.Height),
		ColorModel: color.NRGBAModel,
	}, nil
}
