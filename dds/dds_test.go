package dds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/woozymasta/bcn"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/imgerr"
	"github.com/woozymasta/rawimg/pixel"
)

type ddsFixture struct {
	width, height uint32
	pf            bcn.DDSPixelFormat
	flags         uint32
	pitch         uint32
	dxgi          uint32
	data          []byte
}

func (s ddsFixture) bytes(t *testing.T) []byte {
	t.Helper()

	hdr := &bcn.DDSHeader{
		Size:              bcn.DDSHeaderSize,
		Flags:             bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat | s.flags,
		Width:             s.width,
		Height:            s.height,
		PitchOrLinearSize: s.pitch,
		Depth:             1,
		Caps:              bcn.DDSCapsTexture,
		PixelFormat:       s.pf,
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize
	if s.dxgi != 0 {
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC('D', 'X', '1', '0')
	}

	var buf bytes.Buffer
	if err := bcn.WriteDDSMagic(&buf); err != nil {
		t.Fatal(err)
	}
	if err := bcn.WriteDDSHeader(&buf, hdr); err != nil {
		t.Fatal(err)
	}
	if s.dxgi != 0 {
		// format, texture2d, misc flags, array size, misc flags 2
		_ = binary.Write(&buf, binary.LittleEndian, [5]uint32{s.dxgi, 3, 0, 1, 0})
	}
	buf.Write(s.data)
	return buf.Bytes()
}

func rgbMasks(bitCount, r, g, b, a uint32) bcn.DDSPixelFormat {
	flags := uint32(bcn.DDSPFRGB)
	if a != 0 {
		flags |= bcn.DDSPFAlphaPixels
	}
	return bcn.DDSPixelFormat{Flags: flags, RGBBitCount: bitCount, RBitMask: r, GBitMask: g, BBitMask: b, ABitMask: a}
}

func testImage(t *testing.T, w, h int) *pixel.Image {
	t.Helper()

	pix := make([]uint32, w*h)
	for i := range pix {
		x, y := i%w, i/w
		pix[i] = pixel.ARGB.Pixel(uint32(x*7)&0xFF, uint32(y*5)&0xFF, 0x40, uint32(0xFF-x)&0xFF)
	}
	img, err := pixel.New(pix, w, h, pixel.ARGB)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestDecodeLayouts(t *testing.T) {
	t.Parallel()

	f := pixel.ARGB

	tests := []struct {
		name string
		file ddsFixture
		want []uint32
	}{
		{
			name: "bgra8",
			file: ddsFixture{width: 2, height: 1, pf: rgbMasks(32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000),
				data: []byte{3, 2, 1, 0x80, 6, 5, 4, 0xFF}},
			want: []uint32{f.Pixel(1, 2, 3, 0x80), f.Pixel(4, 5, 6, 0xFF)},
		},
		{
			name: "rgb24",
			file: ddsFixture{width: 1, height: 1, pf: rgbMasks(24, 0xff0000, 0x00ff00, 0x0000ff, 0),
				data: []byte{3, 2, 1}},
			want: []uint32{f.Pixel(1, 2, 3, 0xFF)},
		},
		{
			name: "r5g6b5",
			file: ddsFixture{width: 2, height: 1, pf: rgbMasks(16, 0xf800, 0x07e0, 0x001f, 0),
				data: []byte{0x00, 0xf8, 0x1f, 0x00}},
			want: []uint32{f.Pixel(0xFF, 0, 0, 0xFF), f.Pixel(0, 0, 0xFF, 0xFF)},
		},
		{
			name: "a1r5g5b5",
			file: ddsFixture{width: 1, height: 1, pf: rgbMasks(16, 0x7c00, 0x03e0, 0x001f, 0x8000),
				data: []byte{0xe0, 0x03}},
			want: []uint32{f.Pixel(0, 0xFF, 0, 0)},
		},
		{
			name: "luminance8",
			file: ddsFixture{width: 2, height: 1, pf: bcn.DDSPixelFormat{Flags: bcn.DDSPFLuminance, RGBBitCount: 8, RBitMask: 0xff},
				data: []byte{0x10, 0x20}},
			want: []uint32{f.Pixel(0x10, 0x10, 0x10, 0xFF), f.Pixel(0x20, 0x20, 0x20, 0xFF)},
		},
		{
			name: "luminance8-alpha8",
			file: ddsFixture{width: 1, height: 1, pf: bcn.DDSPixelFormat{
				Flags: bcn.DDSPFLuminance | bcn.DDSPFAlphaPixels, RGBBitCount: 16, RBitMask: 0x00ff, ABitMask: 0xff00,
			}, data: []byte{0x30, 0x40}},
			want: []uint32{f.Pixel(0x30, 0x30, 0x30, 0x40)},
		},
		{
			name: "alpha8",
			file: ddsFixture{width: 1, height: 1, pf: bcn.DDSPixelFormat{Flags: pfAlpha, RGBBitCount: 8, ABitMask: 0xff},
				data: []byte{0x55}},
			want: []uint32{f.Pixel(0, 0, 0, 0x55)},
		},
		{
			name: "dx10-rgba8",
			file: ddsFixture{width: 1, height: 1, dxgi: dxgiR8G8B8A8UNorm, data: []byte{1, 2, 3, 4}},
			want: []uint32{f.Pixel(1, 2, 3, 4)},
		},
		{
			name: "dx10-bgra8",
			file: ddsFixture{width: 1, height: 1, dxgi: dxgiB8G8R8A8UNorm, data: []byte{1, 2, 3, 4}},
			want: []uint32{f.Pixel(3, 2, 1, 4)},
		},
		{
			name: "two-rows",
			file: ddsFixture{width: 1, height: 2, pf: rgbMasks(32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000),
				data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			want: []uint32{f.Pixel(1, 2, 3, 4), f.Pixel(5, 6, 7, 8)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			img, err := Decode(tc.file.bytes(t), f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tc.want, img.Pix); diff != "" {
				t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodePaddedPitch(t *testing.T) {
	t.Parallel()

	var warnings []string
	opts := &Options{Warnf: func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}}

	file := ddsFixture{
		width: 1, height: 2,
		pf:    rgbMasks(32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000),
		flags: bcn.DDSFlagPitch, pitch: 8,
		data:  []byte{1, 2, 3, 4, 0xEE, 0xEE, 0xEE, 0xEE, 5, 6, 7, 8},
	}
	img, err := DecodeWithOptions(file.bytes(t), pixel.ARGB, opts)
	if err != nil {
		t.Fatalf("DecodeWithOptions: %v", err)
	}
	want := []uint32{pixel.ARGB.Pixel(1, 2, 3, 4), pixel.ARGB.Pixel(5, 6, 7, 8)}
	if diff := cmp.Diff(want, img.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %q, want one", warnings)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	bgra := rgbMasks(32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000)

	tests := []struct {
		name   string
		buf    func(t *testing.T) []byte
		target error
		kind   error
	}{
		{
			name:   "bad-magic",
			buf:    func(*testing.T) []byte { return []byte("PNG\x00 not a dds file at all") },
			target: ErrHeaderRead,
			kind:   imgerr.ErrMalformedHeader,
		},
		{
			name: "dxt1",
			buf: func(t *testing.T) []byte {
				return ddsFixture{width: 4, height: 4, pf: bcn.DDSPixelFormat{Flags: bcn.DDSPFFourCC, FourCC: makeFourCC('D', 'X', 'T', '1')}, data: make([]byte, 8)}.bytes(t)
			},
			target: ErrCompressedFormat,
			kind:   imgerr.ErrUnsupportedFormat,
		},
		{
			name:   "dx10-bc3",
			buf:    func(t *testing.T) []byte { return ddsFixture{width: 4, height: 4, dxgi: 77, data: make([]byte, 16)}.bytes(t) },
			target: ErrCompressedFormat,
			kind:   imgerr.ErrUnsupportedFormat,
		},
		{
			name:   "dx10-float",
			buf:    func(t *testing.T) []byte { return ddsFixture{width: 1, height: 1, dxgi: 2, data: make([]byte, 16)}.bytes(t) },
			target: ErrPixelLayout,
			kind:   imgerr.ErrUnsupportedFormat,
		},
		{
			name:   "odd-bit-count",
			buf:    func(t *testing.T) []byte { return ddsFixture{width: 1, height: 1, pf: rgbMasks(12, 0xf00, 0xf0, 0xf, 0)}.bytes(t) },
			target: ErrPixelLayout,
			kind:   imgerr.ErrUnsupportedFormat,
		},
		{
			name:   "zero-width",
			buf:    func(t *testing.T) []byte { return ddsFixture{width: 0, height: 1, pf: bgra}.bytes(t) },
			target: ErrDimensions,
			kind:   imgerr.ErrMalformedHeader,
		},
		{
			name:   "truncated",
			buf:    func(t *testing.T) []byte { return ddsFixture{width: 2, height: 2, pf: bgra, data: make([]byte, 15)}.bytes(t) },
			target: ErrPixelDataShort,
			kind:   imgerr.ErrUnexpectedEndOfData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(tc.buf(t), pixel.ARGB)
			if !errors.Is(err, tc.target) {
				t.Fatalf("error = %v, want %v", err, tc.target)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("error = %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts *WriteOptions
		edds bool
	}{
		{name: "dds-bgra8"},
		{name: "dds-rgba8", opts: &WriteOptions{Format: bcn.FormatRGBA8}},
		{name: "edds-copy", opts: &WriteOptions{EDDS: true}, edds: true},
		{name: "edds-lz4", opts: &WriteOptions{EDDS: true, Compress: true}, edds: true},
		{name: "edds-rgba8-lz4", opts: &WriteOptions{EDDS: true, Compress: true, Format: bcn.FormatRGBA8}, edds: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := testImage(t, 40, 30)
			buf, err := EncodeWithOptions(src, tc.opts)
			if err != nil {
				t.Fatalf("EncodeWithOptions: %v", err)
			}

			info, err := ReadInfo(buf)
			if err != nil {
				t.Fatalf("ReadInfo: %v", err)
			}
			if info.Width != 40 || info.Height != 30 || info.EDDS != tc.edds {
				t.Fatalf("info = %+v", info)
			}

			got, err := Decode(buf, pixel.ARGB)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
				t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteCompressesUniformImage(t *testing.T) {
	t.Parallel()

	pix := make([]uint32, 128*128)
	for i := range pix {
		pix[i] = 0xFF336699
	}
	img, err := pixel.New(pix, 128, 128, pixel.ARGB)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := EncodeEDDS(img, false)
	if err != nil {
		t.Fatalf("EncodeEDDS: %v", err)
	}
	packed, err := EncodeEDDS(img, true)
	if err != nil {
		t.Fatalf("EncodeEDDS: %v", err)
	}

	tableAt := 4 + bcn.DDSHeaderSize
	if got := string(raw[tableAt : tableAt+4]); got != BlockMagicCOPY {
		t.Fatalf("uncompressed block magic = %q", got)
	}
	if got := string(packed[tableAt : tableAt+4]); got != BlockMagicLZ4 {
		t.Fatalf("compressed block magic = %q", got)
	}
	if len(packed) >= len(raw)/4 {
		t.Fatalf("compressed size %d, uncompressed %d", len(packed), len(raw))
	}

	got, err := DecodeEDDS(packed, pixel.ARGB, nil)
	if err != nil {
		t.Fatalf("DecodeEDDS: %v", err)
	}
	if diff := cmp.Diff(pix, got.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLegacySingleBlock(t *testing.T) {
	t.Parallel()

	src := testImage(t, 64, 64)
	payload := surfaceBytes(src, bcn.FormatBGRA8)
	bgra := rgbMasks(32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000)

	uniform := bytes.Repeat([]byte{1, 2, 3, 4}, 64*64)
	block, err := compressBlock(uniform)
	if err != nil {
		t.Fatalf("compressBlock: %v", err)
	}
	if block.Magic != BlockMagicLZ4 {
		t.Fatalf("block magic = %q, want LZ4", block.Magic)
	}

	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{name: "raw", data: payload, want: payload},
		{name: "lz4", data: block.Data, want: uniform},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var warnings int
			opts := &Options{Warnf: func(string, ...any) { warnings++ }}

			buf := ddsFixture{width: 64, height: 64, pf: bgra, data: tc.data}.bytes(t)
			got, err := DecodeEDDS(buf, pixel.ARGB, opts)
			if err != nil {
				t.Fatalf("DecodeEDDS: %v", err)
			}
			if diff := cmp.Diff(tc.want, surfaceBytes(got, bcn.FormatBGRA8)); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
			if warnings != 1 {
				t.Fatalf("warnings = %d, want 1", warnings)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	_, err := EncodeWithOptions(testImage(t, 4, 4), &WriteOptions{Format: bcn.FormatDXT1})
	if !errors.Is(err, ErrInvalidFormat) || !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidFormat", err)
	}

	if _, err := Encode(nil); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("nil image error = %v", err)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	data := make([]byte, 128*1024)
	for i := range data {
		data[i] = byte((i*31 + 7) & 0xff)
	}

	block, err := compressBlock(data)
	if err != nil {
		t.Fatalf("compressBlock: %v", err)
	}

	out, err := decompressBlock(block, len(data))
	if err != nil {
		t.Fatalf("decompressBlock: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("round-trip mismatch")
	}
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct{ limit int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errors.New("disk full")
	}
	w.limit -= len(p)
	return len(p), nil
}

func (w *failingWriter) WriteByte(byte) error {
	_, err := w.Write([]byte{0})
	return err
}

func TestWriteChunkStreamErrors(t *testing.T) {
	t.Parallel()

	data := make([]byte, 2*ChunkSize)
	for _, limit := range []int{0, 4, 5} {
		w := binio.NewStreamWriter(&failingWriter{limit: limit}, binio.LittleEndian)
		if _, err := writeChunkStream(w, data); !errors.Is(err, ErrWriteChunkStream) {
			t.Fatalf("limit %d: expected ErrWriteChunkStream, got %v", limit, err)
		}
	}

	w := binio.NewBufferWriter(binio.LittleEndian)
	ok, err := writeChunkStream(w, data)
	if err != nil || !ok {
		t.Fatalf("writeChunkStream = %v, %v", ok, err)
	}
}

func TestDecompressBlockErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		block   *Block
		want    int
		wantErr error
	}{
		{name: "copy-size", block: &Block{Magic: BlockMagicCOPY, Data: make([]byte, 3)}, want: 4, wantErr: ErrCopySizeMismatch},
		{name: "magic", block: &Block{Magic: "ZSTD", Data: make([]byte, 4)}, want: 4, wantErr: ErrBlockTableUnknownMagic},
		{name: "truncated-header", block: &Block{Magic: BlockMagicLZ4, Data: []byte{1, 0}}, want: 4, wantErr: ErrChunkStreamTruncated},
		{name: "flags", block: &Block{Magic: BlockMagicLZ4, Data: []byte{1, 0, 0, 0x40, 0}}, want: 4, wantErr: ErrUnknownLZ4Flags},
		{name: "chunk-size", block: &Block{Magic: BlockMagicLZ4, Data: []byte{9, 0, 0, 0x80, 0}}, want: 4, wantErr: ErrInvalidChunkSize},
		{name: "target", block: &Block{Magic: BlockMagicLZ4, Data: []byte{1, 0, 0, 0x80, 0}}, want: 1 << 30, wantErr: ErrInvalidTargetSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := decompressBlock(tc.block, tc.want)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDictionaryKeepsTail(t *testing.T) {
	t.Parallel()

	d := newDictionary()
	d.append(bytes.Repeat([]byte{1}, ChunkSize-2))
	d.append([]byte{2, 3, 4, 5})

	got := d.bytes()
	if len(got) != ChunkSize {
		t.Fatalf("dictionary length = %d", len(got))
	}
	if !bytes.Equal(got[len(got)-4:], []byte{2, 3, 4, 5}) || got[0] != 1 {
		t.Fatalf("dictionary tail = %v", got[len(got)-6:])
	}

	d.append(bytes.Repeat([]byte{9}, ChunkSize+10))
	if got := d.bytes(); len(got) != ChunkSize || got[0] != 9 {
		t.Fatalf("oversized append not trimmed")
	}
}

func TestReadBlockTableErrors(t *testing.T) {
	t.Parallel()

	entry := func(magic string, size int32) []byte {
		b := []byte(magic)
		return binary.LittleEndian.AppendUint32(b, uint32(size))
	}

	tests := []struct {
		name    string
		buf     []byte
		count   uint32
		wantErr error
	}{
		{name: "unknown-magic", buf: entry("ABCD", 8), count: 1, wantErr: ErrBlockTableUnknownMagic},
		{name: "negative-size", buf: entry(BlockMagicCOPY, -1), count: 1, wantErr: ErrBlockTableInvalidSize},
		{name: "short", buf: entry(BlockMagicCOPY, 8), count: 2, wantErr: ErrBlockTableRead},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := readBlockTable(binioReader(tc.buf), tc.count)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestImageRegistration(t *testing.T) {
	t.Parallel()

	buf, err := Encode(testImage(t, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if name != "dds" || cfg.Width != 3 || cfg.Height != 2 {
		t.Fatalf("config = %q %+v", name, cfg)
	}
	if _, _, err := image.Decode(bytes.NewReader(buf)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func binioReader(b []byte) *binio.Reader {
	return binio.FromBytes(b, binio.LittleEndian)
}
