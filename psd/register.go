package psd

import (
	"image"
	"image/color"
	"io"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

func init() {
	image.RegisterFormat("psd", "8BPS", decodeImage, DecodeConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := DecodeReader(r, pixel.ABGR, nil)
	if err != nil {
		return nil, err
	}
	return img.Image, nil
}

// DecodeConfig returns the dimensions of a PSD image without decoding it.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(binio.FromStream(r, binio.BigEndian))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
