package rawimg

import (
	"fmt"

	"github.com/woozymasta/rawimg/dds"
	"github.com/woozymasta/rawimg/pixel"
	"github.com/woozymasta/rawimg/tga"
)

// Encode encodes img as type t. TGA is written uncompressed, DDS as BGRA8
// and EDDS as BGRA8 with an LZ4 block. PSD cannot be encoded.
func Encode(t Type, img *pixel.Image) ([]byte, error) {
	switch t {
	case TypeTGA:
		return tga.Encode(img, tga.EncodeRaw)
	case TypeDDS:
		return dds.Encode(img)
	case TypeEDDS:
		return dds.EncodeEDDS(img, true)
	default:
		return nil, fmt.Errorf("%w: encoding %s", ErrUnsupportedType, t)
	}
}

// EncodeTGA encodes img as TGA with the given mode.
func EncodeTGA(img *pixel.Image, mode tga.EncodeMode) ([]byte, error) {
	return tga.Encode(img, mode)
}
