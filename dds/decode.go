package dds

import (
	"bytes"
	"fmt"

	"github.com/woozymasta/bcn"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

const (
	// MaxDimension bounds width and height.
	MaxDimension = 1 << 15

	dx10HeaderSize = 20
)

// Options configures DDS and EDDS decoding.
type Options struct {
	// Warnf receives recoverable oddities in the file. Nil discards them.
	Warnf func(format string, args ...any)
}

func (o *Options) warnf(format string, args ...any) {
	if o != nil && o.Warnf != nil {
		o.Warnf(format, args...)
	}
}

// Info describes a DDS surface without its pixels.
type Info struct {
	Width       int
	Height      int
	MipMapCount int
	// Format names the pixel layout, e.g. "BGRA8", "L8" or "DXT5".
	Format string
	// EDDS reports a block table after the header.
	EDDS bool
}

// Decode decodes the top level of a DDS or EDDS surface in buf. EDDS is
// recognised by the block magic after the header.
func Decode(buf []byte, f *pixel.Format) (*pixel.Image, error) {
	return DecodeWithOptions(buf, f, nil)
}

// DecodeWithOptions decodes buf with opts. Nil opts means defaults.
func DecodeWithOptions(buf []byte, f *pixel.Format, opts *Options) (*pixel.Image, error) {
	return decode(buf, f, opts, false)
}

// DecodeEDDS decodes an EDDS file. Files without a block table are read as
// a single legacy payload.
func DecodeEDDS(buf []byte, f *pixel.Format, opts *Options) (*pixel.Image, error) {
	return decode(buf, f, opts, true)
}

// ReadInfo parses the headers of buf.
func ReadInfo(buf []byte) (*Info, error) {
	header, dx10, r, err := readHeaders(buf)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Width:       int(header.Width),
		Height:      int(header.Height),
		MipMapCount: int(mipMapCount(header)),
		EDDS:        hasBlockTable(r),
	}
	if s, err := detectSurface(header, dx10); err == nil {
		info.Format = s.name
	} else if dx10 != nil {
		info.Format = fmt.Sprintf("DXGI %d", dx10.DXGIFormat)
	} else if header.PixelFormat.Flags&bcn.DDSPFFourCC != 0 {
		info.Format = intToFourCC(header.PixelFormat.FourCC)
	} else {
		info.Format = "unknown"
	}
	return info, nil
}

func decode(buf []byte, f *pixel.Format, opts *Options, edds bool) (*pixel.Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", pixel.ErrInvalidFormat)
	}

	header, dx10, r, err := readHeaders(buf)
	if err != nil {
		return nil, err
	}
	width, height := int(header.Width), int(header.Height)
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	s, err := detectSurface(header, dx10)
	if err != nil {
		return nil, err
	}

	var (
		data  []byte
		pitch = s.rowPitch(width)
	)
	switch {
	case hasBlockTable(r):
		data, err = readLargestMipFromBlocks(r, width, height, s, mipMapCount(header))
	case edds:
		opts.warnf("edds: no block table, reading legacy single block")
		data, err = readLegacySingleBlock(r, pitch*height)
	default:
		pitch = surfacePitch(header, s, width, opts)
		data, err = r.ReadBytes(pitch*(height-1) + s.rowPitch(width))
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrPixelDataShort, err)
		}
	}
	if err != nil {
		return nil, err
	}

	return pixel.New(s.pixels(data, width, height, pitch, f), width, height, f)
}

// readHeaders reads the magic, header and optional DX10 header, returning a
// reader positioned at the surface data.
func readHeaders(buf []byte) (*bcn.DDSHeader, *bcn.DDSHeaderDX10, *binio.Reader, error) {
	br := bytes.NewReader(buf)
	header, err := bcn.ReadDDSHeader(br)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}

	dx10, err := bcn.ReadDDSHeaderDX10(br, header)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrDX10Read, err)
	}

	r := binio.FromBytes(buf, binio.LittleEndian)
	if err := r.SetPosition(int64(len(buf) - br.Len())); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	return header, dx10, r, nil
}

func mipMapCount(header *bcn.DDSHeader) uint32 {
	if header.Caps&bcn.DDSCapsMipmap != 0 && header.MipMapCount > 0 {
		return header.MipMapCount
	}
	return 1
}

// hasBlockTable reports whether the next four bytes are an EDDS block magic.
func hasBlockTable(r *binio.Reader) bool {
	r.Mark()
	defer func() { _ = r.Reset() }()

	magic, err := r.ReadString(4)
	return err == nil && (magic == BlockMagicCOPY || magic == BlockMagicLZ4)
}

// surfacePitch returns the row stride of a plain DDS surface, honouring a
// declared pitch wider than the packed row.
func surfacePitch(header *bcn.DDSHeader, s *surface, width int, opts *Options) int {
	packed := s.rowPitch(width)
	if header.Flags&bcn.DDSFlagPitch == 0 {
		return packed
	}
	declared := int(header.PitchOrLinearSize)
	switch {
	case declared > packed:
		opts.warnf("dds: row pitch %d wider than %d packed bytes", declared, packed)
		return declared
	case declared < packed && declared != 0:
		opts.warnf("dds: ignoring row pitch %d narrower than %d packed bytes", declared, packed)
	}
	return packed
}

// readLargestMipFromBlocks reads the block table and decodes the level 0
// body, skipping the smaller levels stored before it.
func readLargestMipFromBlocks(r *binio.Reader, width, height int, s *surface, count uint32) ([]byte, error) {
	table, err := readBlockTable(r, count)
	if err != nil {
		return nil, err
	}

	for i, h := range table[:len(table)-1] {
		if err := r.Skip(int64(h.Size)); err != nil {
			return nil, fmt.Errorf("%w: mipmap %d: %v", ErrBlockBodyRead, len(table)-1-i, err)
		}
	}

	block, err := readBlockBody(r, table[len(table)-1])
	if err != nil {
		return nil, fmt.Errorf("mipmap 0: %w", err)
	}

	data, err := decompressBlock(block, s.rowPitch(width)*height)
	if err != nil {
		return nil, fmt.Errorf("mipmap 0: %w", err)
	}
	if len(data) != s.rowPitch(width)*height {
		return nil, fmt.Errorf("%w: mipmap 0 decoded to %d bytes, want %d", ErrDecodedSizeMismatch, len(data), s.rowPitch(width)*height)
	}
	return data, nil
}

// readLegacySingleBlock reads a table-less EDDS payload: an LZ4 chunk stream
// first, or raw data when it already has the level size.
func readLegacySingleBlock(r *binio.Reader, expected int) ([]byte, error) {
	rem, _ := r.Remaining()
	data, err := r.ReadBytes(int(rem))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLegacyBlock, err)
	}

	size, err := i32FromInt(len(data))
	if err != nil {
		return nil, err
	}

	out, err := decompressBlock(&Block{Magic: BlockMagicLZ4, Size: size, Data: data}, expected)
	if err == nil {
		return out, nil
	}
	if len(data) == expected {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrLegacyBlock, err)
}

// pixels converts surface rows into packed pixels.
func (s *surface) pixels(data []byte, width, height, pitch int, f *pixel.Format) []uint32 {
	bpp := s.bytesPerPixel()
	pix := make([]uint32, width*height)
	for y := range height {
		row := data[y*pitch:]
		for x := range width {
			var v uint32
			for k := range bpp {
				v |= uint32(row[x*bpp+k]) << (8 * k)
			}
			r, g, b, a := s.rgba(v)
			pix[y*width+x] = f.Pixel(r, g, b, a)
		}
	}
	return pix
}
