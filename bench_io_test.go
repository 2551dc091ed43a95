package rawimg

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/woozymasta/rawimg/pixel"
	"github.com/woozymasta/rawimg/tga"
)

// benchMainFlowImage builds a deterministic image used by IO benchmarks.
func benchMainFlowImage(b *testing.B, width, height int) *pixel.Image {
	b.Helper()

	src := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Mixed low/high frequencies with long flat runs for RLE and LZ4.
			src.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),        //nolint:gosec // bounded by mask
				G: uint8((x / 16) & 0xff),           //nolint:gosec // bounded by mask
				B: uint8((x ^ y ^ (x >> 2)) & 0xff), //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}

	img, err := pixel.FromImage(src, pixel.ABGR)
	if err != nil {
		b.Fatalf("prepare image: %v", err)
	}
	return img
}

// benchMainFlowInputPath prepares a benchmark file for read benchmarks.
func benchMainFlowInputPath(b *testing.B, img *pixel.Image, name string) string {
	b.Helper()

	path := filepath.Join(b.TempDir(), name)
	if err := WriteFile(path, img); err != nil {
		b.Fatalf("prepare input file: %v", err)
	}
	return path
}

func BenchmarkMainFlowWrite(b *testing.B) {
	img := benchMainFlowImage(b, 1024, 1024)

	for _, name := range []string{"main_flow.tga", "main_flow.dds", "main_flow.edds"} {
		b.Run(filepath.Ext(name), func(b *testing.B) {
			path := filepath.Join(b.TempDir(), name)

			b.ReportAllocs()
			b.SetBytes(int64(len(img.Pix) * 4))
			b.ResetTimer()

			for b.Loop() {
				if err := WriteFile(path, img); err != nil {
					b.Fatalf("write: %v", err)
				}
			}
		})
	}
}

func BenchmarkMainFlowRead(b *testing.B) {
	img := benchMainFlowImage(b, 1024, 1024)

	for _, name := range []string{"main_flow.tga", "main_flow.dds", "main_flow.edds"} {
		b.Run(filepath.Ext(name), func(b *testing.B) {
			path := benchMainFlowInputPath(b, img, name)

			b.ReportAllocs()
			b.SetBytes(int64(len(img.Pix) * 4))
			b.ResetTimer()

			for b.Loop() {
				if _, err := ReadFile(path, pixel.ARGB); err != nil {
					b.Fatalf("read: %v", err)
				}
			}
		})
	}
}

func BenchmarkEncodeTGA(b *testing.B) {
	img := benchMainFlowImage(b, 1024, 1024)

	for _, mode := range []tga.EncodeMode{tga.EncodeRaw, tga.EncodeRLE} {
		b.Run(mode.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(img.Pix) * 4))
			b.ResetTimer()

			for b.Loop() {
				if _, err := EncodeTGA(img, mode); err != nil {
					b.Fatalf("encode: %v", err)
				}
			}
		})
	}
}
