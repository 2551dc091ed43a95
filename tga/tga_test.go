package tga

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/woozymasta/rawimg/imgerr"
	"github.com/woozymasta/rawimg/pixel"
)

// buildTGA assembles a header, optional image ID, colormap and pixel data.
func buildTGA(h Header, id, colorMap, data []byte) []byte {
	h.IDLength = uint8(len(id))
	buf := []byte{
		h.IDLength, h.ColorMapType, byte(h.ImageType),
		byte(h.ColorMapOrigin), byte(h.ColorMapOrigin >> 8),
		byte(h.ColorMapLength), byte(h.ColorMapLength >> 8),
		h.ColorMapDepth,
		0, 0, 0, 0,
		byte(h.Width), byte(h.Width >> 8),
		byte(h.Height), byte(h.Height >> 8),
		h.PixelDepth, h.Descriptor,
	}
	buf = append(buf, id...)
	buf = append(buf, colorMap...)
	return append(buf, data...)
}

// bgr24 is a 2x2 image in file order: a b / c d.
var bgr24 = []byte{
	0x03, 0x02, 0x01, // a: r=1 g=2 b=3
	0x13, 0x12, 0x11, // b
	0x23, 0x22, 0x21, // c
	0x33, 0x32, 0x31, // d
}

func TestDecodeOrigins(t *testing.T) {
	t.Parallel()

	a := pixel.ARGB.Pixel(0x01, 0x02, 0x03, 0xFF)
	b := pixel.ARGB.Pixel(0x11, 0x12, 0x13, 0xFF)
	c := pixel.ARGB.Pixel(0x21, 0x22, 0x23, 0xFF)
	d := pixel.ARGB.Pixel(0x31, 0x32, 0x33, 0xFF)

	tests := []struct {
		name       string
		descriptor uint8
		want       []uint32
	}{
		{name: "upper-left", descriptor: UpperOrigin, want: []uint32{a, b, c, d}},
		{name: "upper-right", descriptor: UpperOrigin | RightOrigin, want: []uint32{b, a, d, c}},
		{name: "lower-left", descriptor: 0, want: []uint32{c, d, a, b}},
		{name: "lower-right", descriptor: RightOrigin, want: []uint32{d, c, b, a}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := buildTGA(Header{ImageType: TypeTrueColor, Width: 2, Height: 2, PixelDepth: 24, Descriptor: tc.descriptor}, nil, nil, bgr24)
			img, err := Decode(buf, pixel.ARGB)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tc.want, img.Pix); diff != "" {
				t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeVariants(t *testing.T) {
	t.Parallel()

	f := pixel.ABGR

	palette := []byte{
		0x00, 0x00, 0xFF, 0x80, // red, alpha 0x80
		0x00, 0xFF, 0x00, 0xFF, // green
	}

	tests := []struct {
		name string
		buf  []byte
		want []uint32
	}{
		{
			name: "truecolor-32",
			buf:  buildTGA(Header{ImageType: TypeTrueColor, Width: 1, Height: 1, PixelDepth: 32, Descriptor: UpperOrigin}, nil, nil, []byte{3, 2, 1, 0x40}),
			want: []uint32{f.Pixel(1, 2, 3, 0x40)},
		},
		{
			name: "image-id-skipped",
			buf:  buildTGA(Header{ImageType: TypeTrueColor, Width: 1, Height: 1, PixelDepth: 24, Descriptor: UpperOrigin}, []byte("hello"), nil, []byte{3, 2, 1}),
			want: []uint32{f.Pixel(1, 2, 3, 0xFF)},
		},
		{
			name: "gray-8",
			buf:  buildTGA(Header{ImageType: TypeGrayscale, Width: 2, Height: 1, PixelDepth: 8, Descriptor: UpperOrigin}, nil, nil, []byte{0x10, 0x20}),
			want: []uint32{f.Pixel(0x10, 0x10, 0x10, 0xFF), f.Pixel(0x20, 0x20, 0x20, 0xFF)},
		},
		{
			name: "gray-16",
			buf:  buildTGA(Header{ImageType: TypeGrayscale, Width: 1, Height: 1, PixelDepth: 16, Descriptor: UpperOrigin}, nil, nil, []byte{0x10, 0x7F}),
			want: []uint32{f.Pixel(0x10, 0x10, 0x10, 0x7F)},
		},
		{
			name: "colormap-origin",
			buf: buildTGA(Header{
				ImageType: TypeColorMap, ColorMapType: 1, ColorMapOrigin: 1, ColorMapLength: 2, ColorMapDepth: 32,
				Width: 3, Height: 1, PixelDepth: 8, Descriptor: UpperOrigin,
			}, nil, palette, []byte{1, 2, 0}),
			want: []uint32{f.Pixel(0xFF, 0, 0, 0x80), f.Pixel(0, 0xFF, 0, 0xFF), 0xFFFFFFFF},
		},
		{
			name: "colormap-24-rle",
			buf: buildTGA(Header{
				ImageType: TypeColorMapRLE, ColorMapType: 1, ColorMapLength: 2, ColorMapDepth: 24,
				Width: 3, Height: 1, PixelDepth: 8, Descriptor: UpperOrigin,
			}, nil, []byte{0, 0, 0xFF, 0, 0xFF, 0}, []byte{0x81, 1, 0x00, 0}),
			want: []uint32{f.Pixel(0, 0xFF, 0, 0xFF), f.Pixel(0, 0xFF, 0, 0xFF), f.Pixel(0xFF, 0, 0, 0xFF)},
		},
		{
			name: "truecolor-rle-lower-left",
			buf: buildTGA(Header{ImageType: TypeTrueColorRLE, Width: 2, Height: 2, PixelDepth: 24}, nil, nil, []byte{
				0x81, 3, 2, 1, // bottom row: two copies
				0x01, 6, 5, 4, 9, 8, 7, // top row: two literals
			}),
			want: []uint32{f.Pixel(4, 5, 6, 0xFF), f.Pixel(7, 8, 9, 0xFF), f.Pixel(1, 2, 3, 0xFF), f.Pixel(1, 2, 3, 0xFF)},
		},
		{
			name: "gray-rle",
			buf:  buildTGA(Header{ImageType: TypeGrayscaleRLE, Width: 3, Height: 1, PixelDepth: 8, Descriptor: UpperOrigin}, nil, nil, []byte{0x82, 0x55}),
			want: []uint32{f.Pixel(0x55, 0x55, 0x55, 0xFF), f.Pixel(0x55, 0x55, 0x55, 0xFF), f.Pixel(0x55, 0x55, 0x55, 0xFF)},
		},
		{
			name: "truecolor-with-unused-colormap",
			buf: buildTGA(Header{
				ImageType: TypeTrueColor, ColorMapType: 1, ColorMapLength: 1, ColorMapDepth: 24,
				Width: 1, Height: 1, PixelDepth: 24, Descriptor: UpperOrigin,
			}, nil, []byte{9, 9, 9}, []byte{3, 2, 1}),
			want: []uint32{f.Pixel(1, 2, 3, 0xFF)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			img, err := Decode(tc.buf, f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Format() != f {
				t.Fatalf("format = %v, want %v", img.Format(), f)
			}
			if diff := cmp.Diff(tc.want, img.Pix); diff != "" {
				t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buf     []byte
		wantErr error
	}{
		{name: "short-header", buf: make([]byte, 10), wantErr: ErrHeaderRead},
		{name: "no-image", buf: buildTGA(Header{ImageType: TypeNoImage}, nil, nil, nil), wantErr: imgerr.ErrUnsupportedFormat},
		{name: "unknown-type", buf: buildTGA(Header{ImageType: 32, Width: 1, Height: 1, PixelDepth: 8}, nil, nil, []byte{0}), wantErr: ErrUnknownImageType},
		{name: "depth-16-truecolor", buf: buildTGA(Header{ImageType: TypeTrueColor, Width: 1, Height: 1, PixelDepth: 16}, nil, nil, []byte{0, 0}), wantErr: ErrUnsupportedDepth},
		{name: "truncated", buf: buildTGA(Header{ImageType: TypeTrueColor, Width: 2, Height: 2, PixelDepth: 24}, nil, nil, bgr24[:8]), wantErr: imgerr.ErrUnexpectedEndOfData},
		{name: "rle-truncated", buf: buildTGA(Header{ImageType: TypeTrueColorRLE, Width: 2, Height: 1, PixelDepth: 24}, nil, nil, []byte{0x81, 1}), wantErr: ErrPixelDataShort},
		{name: "rle-overrun", buf: buildTGA(Header{ImageType: TypeTrueColorRLE, Width: 2, Height: 1, PixelDepth: 24}, nil, nil, []byte{0x85, 1, 2, 3}), wantErr: imgerr.ErrMalformedHeader},
		{name: "rle-header-only", buf: buildTGA(Header{ImageType: TypeTrueColorRLE, Width: 65535, Height: 65535, PixelDepth: 32}, nil, nil, nil), wantErr: ErrPixelDataShort},
		{name: "rle-too-few-packets", buf: buildTGA(Header{ImageType: TypeGrayscaleRLE, Width: 257, Height: 1, PixelDepth: 8}, nil, nil, []byte{0xFF, 1, 0xFF, 2}), wantErr: ErrPixelDataShort},
		{
			name: "colormap-index",
			buf: buildTGA(Header{
				ImageType: TypeColorMap, ColorMapType: 1, ColorMapLength: 1, ColorMapDepth: 24,
				Width: 1, Height: 1, PixelDepth: 8,
			}, nil, []byte{1, 2, 3}, []byte{5}),
			wantErr: ErrColorMapIndex,
		},
		{
			name: "colormap-truncated",
			buf: buildTGA(Header{
				ImageType: TypeColorMap, ColorMapType: 1, ColorMapLength: 100, ColorMapDepth: 24,
				Width: 1, Height: 1, PixelDepth: 8,
			}, nil, []byte{1, 2, 3}, []byte{0}),
			wantErr: ErrColorMapShort,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			img, err := Decode(tc.buf, pixel.ARGB)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if img != nil {
				t.Fatalf("expected no image on error")
			}
		})
	}
}

func testImage(t *testing.T, f *pixel.Format, w, h int) *pixel.Image {
	t.Helper()

	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// flat runs on the left half, noise on the right
			v := uint32(y * 16)
			if x >= w/2 {
				v = uint32((x*31 + y*7) & 0xFF)
			}
			pix[y*w+x] = f.Pixel(v, 0xFF-v, uint32(x&0xFF), uint32((x+y)&0xFF))
		}
	}
	img, err := pixel.New(pix, w, h, f)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}
	return img
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range []*pixel.Format{pixel.ARGB, pixel.ABGR} {
		for _, mode := range []EncodeMode{EncodeRaw, EncodeRLE} {
			t.Run(f.String()+"-"+mode.String(), func(t *testing.T) {
				t.Parallel()

				img := testImage(t, f, 300, 5)
				buf, err := Encode(img, mode)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}

				h, err := ReadHeader(buf)
				if err != nil {
					t.Fatalf("ReadHeader: %v", err)
				}
				if h.Width != 300 || h.Height != 5 || h.ImageType.RLE() != (mode == EncodeRLE) {
					t.Fatalf("unexpected header: %+v", h)
				}

				got, err := Decode(buf, f)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if got.Width != img.Width || got.Height != img.Height {
					t.Fatalf("size %dx%d, want %dx%d", got.Width, got.Height, img.Width, img.Height)
				}
				if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
					t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestEncodeRLECompresses(t *testing.T) {
	t.Parallel()

	pix := make([]uint32, 64*64)
	for i := range pix {
		pix[i] = 0xFF336699
	}
	img, err := pixel.New(pix, 64, 64, pixel.ARGB)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}

	raw, err := Encode(img, EncodeRaw)
	if err != nil {
		t.Fatalf("Encode raw: %v", err)
	}
	rle, err := Encode(img, EncodeRLE)
	if err != nil {
		t.Fatalf("Encode rle: %v", err)
	}
	if len(rle) >= len(raw)/10 {
		t.Fatalf("RLE output %d bytes, raw %d", len(rle), len(raw))
	}
	if !bytes.HasSuffix(raw, footer) {
		t.Fatalf("missing TGA footer")
	}

	var stream bytes.Buffer
	if err := EncodeTo(&stream, img, EncodeRLE); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if !bytes.Equal(stream.Bytes(), rle) {
		t.Fatalf("EncodeTo differs from Encode")
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	img, err := pixel.New(make([]uint32, 70000), 70000, 1, pixel.ARGB)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}
	if _, err := Encode(img, EncodeRaw); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}

	small, _ := pixel.New([]uint32{0}, 1, 1, pixel.ARGB)
	if _, err := Encode(small, EncodeMode(7)); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	buf := buildTGA(Header{ImageType: TypeTrueColor, Width: 2, Height: 2, PixelDepth: 24, Descriptor: UpperOrigin}, nil, nil, bgr24)
	cfg, err := DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Fatalf("config %dx%d, want 2x2", cfg.Width, cfg.Height)
	}

	bad := buildTGA(Header{ImageType: 5, Width: 1, Height: 1, PixelDepth: 24}, nil, nil, nil)
	if _, err := DecodeConfig(bytes.NewReader(bad)); !errors.Is(err, imgerr.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := DecodeConfig(bytes.NewReader(buf[:10])); !errors.Is(err, imgerr.ErrUnexpectedEndOfData) {
		t.Fatalf("expected ErrUnexpectedEndOfData, got %v", err)
	}
}

func TestDecodeRLEFullRuns(t *testing.T) {
	t.Parallel()

	// Two maximal run packets exactly fill a 256 pixel row.
	buf := buildTGA(Header{ImageType: TypeGrayscaleRLE, Width: 256, Height: 1, PixelDepth: 8, Descriptor: UpperOrigin},
		nil, nil, []byte{0xFF, 0x10, 0xFF, 0x20})
	img, err := Decode(buf, pixel.ARGB)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := img.Pix[0], pixel.ARGB.Pixel(0x10, 0x10, 0x10, 0xFF); got != want {
		t.Fatalf("first pixel 0x%08x, want 0x%08x", got, want)
	}
	if got, want := img.Pix[255], pixel.ARGB.Pixel(0x20, 0x20, 0x20, 0xFF); got != want {
		t.Fatalf("last pixel 0x%08x, want 0x%08x", got, want)
	}
}
