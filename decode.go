package rawimg

import (
	"fmt"
	"io"

	"github.com/woozymasta/rawimg/dds"
	"github.com/woozymasta/rawimg/pixel"
	"github.com/woozymasta/rawimg/psd"
	"github.com/woozymasta/rawimg/tga"
)

// Options configures decoding through the dispatcher.
type Options struct {
	// PSDLayers also decodes PSD layer records and channel data.
	PSDLayers bool
	// Warnf receives recoverable oddities reported by the decoders. Nil discards them.
	Warnf func(format string, args ...any)
}

func (o *Options) psd() *psd.Options {
	if o == nil {
		return nil
	}
	return &psd.Options{Layers: o.PSDLayers, Warnf: o.Warnf}
}

func (o *Options) dds() *dds.Options {
	if o == nil {
		return nil
	}
	return &dds.Options{Warnf: o.Warnf}
}

// Decode decodes the image of type t starting at offset in buf into pixels
// packed with f.
func Decode(t Type, f *pixel.Format, buf []byte, offset int) (*pixel.Image, error) {
	return DecodeWithOptions(t, f, buf, offset, nil)
}

// DecodeWithOptions is Decode with opts. Nil opts means defaults.
func DecodeWithOptions(t Type, f *pixel.Format, buf []byte, offset int, opts *Options) (*pixel.Image, error) {
	if offset < 0 || offset > len(buf) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidOffset, offset, len(buf))
	}
	data := buf[offset:]

	switch t {
	case TypeDDS:
		return dds.DecodeWithOptions(data, f, opts.dds())
	case TypeEDDS:
		return dds.DecodeEDDS(data, f, opts.dds())
	case TypePSD:
		img, err := psd.DecodeWithOptions(data, f, opts.psd())
		if err != nil {
			return nil, err
		}
		return img.Image, nil
	case TypeTGA:
		return tga.Decode(data, f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// DecodePSD decodes a PSD document in buf, keeping its header and layers.
func DecodePSD(buf []byte, f *pixel.Format, opts *Options) (*psd.Image, error) {
	return psd.DecodeWithOptions(buf, f, opts.psd())
}

// DecodeReader decodes an image of type t read sequentially from r.
// Only PSD can be streamed.
func DecodeReader(t Type, f *pixel.Format, r io.Reader) (*pixel.Image, error) {
	return DecodeReaderWithOptions(t, f, r, nil)
}

// DecodeReaderWithOptions is DecodeReader with opts.
func DecodeReaderWithOptions(t Type, f *pixel.Format, r io.Reader, opts *Options) (*pixel.Image, error) {
	if t != TypePSD {
		return nil, fmt.Errorf("%w: streaming %s", ErrUnsupportedType, t)
	}
	img, err := psd.DecodeReader(r, f, opts.psd())
	if err != nil {
		return nil, err
	}
	return img.Image, nil
}
