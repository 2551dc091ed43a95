package psd

import (
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zlib"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/internal/packbits"
	"github.com/woozymasta/rawimg/pixel"
)

// Options controls PSD decoding.
type Options struct {
	// Layers reads layer records and channel planes in addition to the
	// composite image.
	Layers bool
	// Warnf receives recoverable oddities in the file. Nil discards them.
	Warnf func(format string, args ...any)
}

func (o *Options) warnf(format string, args ...any) {
	if o != nil && o.Warnf != nil {
		o.Warnf(format, args...)
	}
}

// Image is a decoded PSD document: the composite image plus, when requested,
// its layers.
type Image struct {
	*pixel.Image

	Header Header
	// ColorModeData is the raw color mode section; for indexed images it
	// holds the red, green and blue palette tables.
	ColorModeData []byte
	// LayerCount is the signed count stored in the file. A negative value
	// marks the first alpha channel as the merged transparency.
	LayerCount int16

	layers []*Layer
}

// Layers returns the layers in file order (bottom first). It is empty unless
// Options.Layers was set.
func (m *Image) Layers() []*Layer { return m.layers }

// Decode decodes the composite image in buf.
func Decode(buf []byte, f *pixel.Format) (*pixel.Image, error) {
	img, err := DecodeWithOptions(buf, f, nil)
	if err != nil {
		return nil, err
	}
	return img.Image, nil
}

// DecodeWithOptions decodes buf with opts. Nil opts means defaults.
func DecodeWithOptions(buf []byte, f *pixel.Format, opts *Options) (*Image, error) {
	return decode(binio.FromBytes(buf, binio.BigEndian), f, opts)
}

// DecodeReader decodes a PSD document from a stream in one forward pass.
func DecodeReader(rd io.Reader, f *pixel.Format, opts *Options) (*Image, error) {
	return decode(binio.FromStream(rd, binio.BigEndian), f, opts)
}

func decode(r *binio.Reader, f *pixel.Format, opts *Options) (*Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", pixel.ErrInvalidFormat)
	}
	if opts == nil {
		opts = &Options{}
	}

	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.checkDecodable(); err != nil {
		return nil, err
	}

	img := &Image{Header: *h}
	if img.ColorModeData, err = readColorModeData(r, h); err != nil {
		return nil, err
	}

	resources, err := r.ReadUint32()
	if err != nil {
		return nil, truncated("image resources length", err)
	}
	if err := r.Skip(int64(resources)); err != nil {
		return nil, truncated("image resources", err)
	}

	if err := readLayerSection(r, img, opts); err != nil {
		return nil, err
	}

	pix, err := readComposite(r, h, img.ColorModeData, f, opts)
	if err != nil {
		return nil, err
	}
	if img.Image, err = pixel.New(pix, int(h.Width), int(h.Height), f); err != nil {
		return nil, err
	}
	return img, nil
}

func readColorModeData(r *binio.Reader, h *Header) ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, truncated("color mode data length", err)
	}
	if n > maxColorModeData {
		return nil, fmt.Errorf("%w: %d bytes", ErrColorModeData, n)
	}
	if h.ColorMode == ColorModeIndexed && n < 3*256 {
		return nil, fmt.Errorf("%w: indexed palette of %d bytes", ErrColorModeData, n)
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, truncated("color mode data", err)
	}
	return data, nil
}

// readLayerSection reads or skips the layer and mask information section.
func readLayerSection(r *binio.Reader, img *Image, opts *Options) error {
	n, err := r.ReadUint32()
	if err != nil {
		return truncated("layer section length", err)
	}
	if n == 0 {
		return nil
	}
	if rem, ok := r.Remaining(); ok && int64(n) > rem {
		return fmt.Errorf("%w: layer section of %d bytes, %d left", ErrSectionLength, n, rem)
	}
	if !opts.Layers {
		if err := r.Skip(int64(n)); err != nil {
			return truncated("layer section", err)
		}
		return nil
	}

	sectionEnd := r.Position() + int64(n)
	if n < 4 {
		return fmt.Errorf("%w: layer section of %d bytes", ErrSectionLength, n)
	}
	infoLen, err := r.ReadUint32()
	if err != nil {
		return truncated("layer info length", err)
	}
	infoEnd := r.Position() + int64(infoLen)
	if infoEnd > sectionEnd {
		return fmt.Errorf("%w: layer info of %d bytes exceeds section", ErrSectionLength, infoLen)
	}

	if infoLen > 0 {
		if img.layers, err = readLayerInfo(r, img, infoLen, opts); err != nil {
			return err
		}
		if err := skipTo(r, infoEnd, "layer info"); err != nil {
			return err
		}
	}

	// global layer mask and tagged blocks
	return skipTo(r, sectionEnd, "layer section")
}

func readLayerInfo(r *binio.Reader, img *Image, infoLen uint32, opts *Options) ([]*Layer, error) {
	if infoLen < 2 {
		return nil, fmt.Errorf("%w: layer info of %d bytes", ErrSectionLength, infoLen)
	}
	count, err := r.ReadInt16()
	if err != nil {
		return nil, truncated("layer count", err)
	}
	img.LayerCount = count

	n := int(count)
	if n < 0 {
		n = -n
	}
	if int64(n)*minLayerRecord > int64(infoLen)-2 {
		return nil, fmt.Errorf("%w: %d layers in %d bytes", ErrLayerCount, n, infoLen)
	}

	layers := make([]*Layer, n)
	for i := range layers {
		if layers[i], err = readLayerRecord(r); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	for i, l := range layers {
		for _, ch := range l.Channels {
			w, h := l.Width(), l.Height()
			if ch.ID == ChannelUserMask {
				w, h = l.Mask.Width(), l.Mask.Height()
				if w < 0 || h < 0 || w > maxDimension || h > maxDimension {
					return nil, fmt.Errorf("layer %d: %w: mask %+v", i, ErrLayerBounds, l.Mask)
				}
			}
			if err := readChannelData(r, ch, w, h, opts); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}
	return layers, nil
}

func skipTo(r *binio.Reader, end int64, what string) error {
	pos := r.Position()
	if pos > end {
		return fmt.Errorf("%w: %s overrun by %d bytes", ErrSectionLength, what, pos-end)
	}
	if err := r.Skip(end - pos); err != nil {
		return truncated(what, err)
	}
	return nil
}

// readComposite decodes the merged image data, recombining each channel row
// straight into the destination pixels.
func readComposite(r *binio.Reader, h *Header, palette []byte, f *pixel.Format, opts *Options) ([]uint32, error) {
	c, err := r.ReadUint16()
	if err != nil {
		return nil, truncated("image data compression", err)
	}

	width, height, channels := int(h.Width), int(h.Height), int(h.Channels)
	var (
		next     func(row []byte) error
		finish   func() error
		planeLen = int64(width) * int64(height)
	)

	switch Compression(c) {
	case CompressionRaw:
		if rem, ok := r.Remaining(); ok && planeLen*int64(channels) > rem {
			return nil, fmt.Errorf("%w: raw image data needs %d bytes, %d left", ErrTruncated, planeLen*int64(channels), rem)
		}
		next = r.ReadFull
	case CompressionRLE:
		table, err := r.ReadBytes(2 * height * channels)
		if err != nil {
			return nil, truncated("row length table", err)
		}
		if rem, ok := r.Remaining(); ok && 2*planeLen*int64(channels) > maxPackBitsRun*rem {
			return nil, fmt.Errorf("%w: %d bytes of RLE data cannot expand to %d", ErrTruncated, rem, planeLen*int64(channels))
		}
		var declared int64
		for i := 0; i < len(table); i += 2 {
			declared += int64(binio.BigEndian.Uint16(table[i:]))
		}
		start := r.Position()
		next = func(row []byte) error { return packbits.Decode(r, row) }
		finish = func() error {
			if used := r.Position() - start; used != declared {
				opts.warnf("psd: row length table declares %d bytes, RLE data used %d", declared, used)
			}
			return nil
		}
	case CompressionZip, CompressionZipPredicted:
		if rem, ok := r.Remaining(); ok && planeLen*int64(channels) > maxDeflateExpansion*rem {
			return nil, fmt.Errorf("%w: %d bytes cannot inflate to %d", ErrTruncated, rem, planeLen*int64(channels))
		}
		zr, err := zlib.NewReader(byteSource{r})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrZipData, err)
		}
		defer func() { _ = zr.Close() }()
		predicted := Compression(c) == CompressionZipPredicted
		next = func(row []byte) error {
			if _, err := io.ReadFull(zr, row); err != nil {
				return fmt.Errorf("%w: %v", ErrZipData, err)
			}
			if predicted {
				undoPrediction(row, width)
			}
			return nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrCompression, c)
	}

	// The first channel grows pix one row at a time, so a header alone
	// cannot reserve the whole canvas.
	combine := recombiner(h, palette, f, opts)
	pix := make([]uint32, 0, min(planeLen, initialPixels))
	row := make([]byte, width)
	for ch := range channels {
		for y := range height {
			if err := next(row); err != nil {
				return nil, fmt.Errorf("image data channel %d row %d: %w", ch, y, err)
			}
			if ch == 0 {
				pix = slices.Grow(pix, width)[:len(pix)+width]
			}
			combine(pix[y*width:(y+1)*width], ch, row)
		}
	}
	if finish != nil {
		if err := finish(); err != nil {
			return nil, err
		}
	}

	opaque := h.Channels == 1
	if h.ColorMode == ColorModeRGB {
		opaque = h.Channels == 3
	}
	if opaque {
		a := f.AlphaMask()
		for i := range pix {
			pix[i] |= a
		}
	}
	return pix, nil
}

// recombiner returns the color mode specific routine that ORs one decoded
// channel row into dst.
func recombiner(h *Header, palette []byte, f *pixel.Format, opts *Options) func(dst []uint32, ch int, row []byte) {
	rs, gs, bs, as := f.RedShift(), f.GreenShift(), f.BlueShift(), f.AlphaShift()
	warned := false
	extra := func(ch int) {
		if !warned {
			opts.warnf("psd: ignoring %s channels from %d on", h.ColorMode, ch)
			warned = true
		}
	}

	switch h.ColorMode {
	case ColorModeRGB:
		shifts := [4]uint{rs, gs, bs, as}
		return func(dst []uint32, ch int, row []byte) {
			if ch >= len(shifts) {
				extra(ch)
				return
			}
			s := shifts[ch]
			for x, v := range row {
				dst[x] |= uint32(v) << s
			}
		}
	case ColorModeIndexed:
		return func(dst []uint32, ch int, row []byte) {
			switch ch {
			case 0:
				for x, v := range row {
					dst[x] |= f.Pixel(uint32(palette[v]), uint32(palette[256+int(v)]), uint32(palette[512+int(v)]), 0)
				}
			case 1:
				// alpha is decoded but always opaque
				for x := range row {
					dst[x] |= 0xFF << as
				}
			default:
				extra(ch)
			}
		}
	default:
		return func(dst []uint32, ch int, row []byte) {
			switch ch {
			case 0:
				for x, v := range row {
					g := uint32(v)
					dst[x] |= g<<rs | g<<gs | g<<bs
				}
			case 1:
				// alpha is decoded but always opaque
				for x := range row {
					dst[x] |= 0xFF << as
				}
			default:
				extra(ch)
			}
		}
	}
}

const (
	// Deflate expands at most 1032:1.
	maxDeflateExpansion = 1032
	initialPixels       = 1 << 16
)

// byteSource adapts a binio.Reader for the zlib decoder. Exposing ReadByte
// keeps the decoder from reading past the compressed stream.
type byteSource struct {
	r *binio.Reader
}

func (s byteSource) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, io.EOF
	}
	return b, nil
}

func (s byteSource) Read(p []byte) (int, error) {
	for i := range p {
		b, err := s.ReadByte()
		if err != nil {
			if i == 0 {
				return 0, err
			}
			return i, nil
		}
		p[i] = b
	}
	return len(p), nil
}

func truncated(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTruncated, what, err)
}
