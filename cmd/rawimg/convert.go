package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woozymasta/rawimg"
	"github.com/woozymasta/rawimg/pixel"
	"github.com/woozymasta/rawimg/tga"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between DDS, EDDS, PSD, TGA, PNG and JPEG",
	Long: `Decode the input (DDS, EDDS, PSD, TGA, PNG or JPEG) and write it by output
extension as TGA, DDS, EDDS or PNG.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("input", "i", "", "Input image file")
	convertCmd.Flags().StringP("output", "o", "", "Output image file")
	convertCmd.Flags().String("format", "abgr", "Pixel format used while decoding (argb, abgr)")
	convertCmd.Flags().Bool("rle", false, "Run-length encode TGA output")
	convertCmd.Flags().Int("layer", -1, "Export this PSD layer instead of the composite")
	convertCmd.Flags().BoolP("verbose", "v", false, "Print decoder warnings to stderr")
	_ = convertCmd.MarkFlagRequired("input")
	_ = convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}

func parseFormat(name string) (*pixel.Format, error) {
	switch strings.ToLower(name) {
	case "argb":
		return pixel.ARGB, nil
	case "abgr":
		return pixel.ABGR, nil
	default:
		return nil, fmt.Errorf("unknown pixel format %q (want argb or abgr)", name)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	rle, _ := cmd.Flags().GetBool("rle")
	layer, _ := cmd.Flags().GetInt("layer")
	verbose, _ := cmd.Flags().GetBool("verbose")

	f, err := parseFormat(formatName)
	if err != nil {
		return err
	}

	opts := &rawimg.Options{PSDLayers: layer >= 0}
	if verbose {
		errOut := cmd.ErrOrStderr()
		opts.Warnf = func(format string, args ...any) {
			fmt.Fprintf(errOut, "warning: "+format+"\n", args...)
		}
	}

	img, err := readInput(inputPath, f, layer, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(outputPath, img, rle); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d x %d)\n", inputPath, outputPath, img.Width, img.Height)
	return nil
}

func readInput(path string, f *pixel.Format, layer int, opts *rawimg.Options) (*pixel.Image, error) {
	t, ok := rawimg.TypeFromPath(path)
	if !ok {
		return readStdImage(path, f)
	}
	if layer < 0 {
		img, err := rawimg.ReadFileWithOptions(path, f, opts)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}
	if t != rawimg.TypePSD {
		return nil, fmt.Errorf("--layer needs a PSD input, got %s", t)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := rawimg.DecodePSD(data, f, opts)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	layers := doc.Layers()
	if layer >= len(layers) {
		return nil, fmt.Errorf("layer %d out of range, %s has %d", layer, path, len(layers))
	}
	return layers[layer].Image(f)
}

func readStdImage(path string, f *pixel.Format) (*pixel.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return pixel.FromImage(src, f)
}

func writeOutput(path string, img *pixel.Image, rle bool) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return writeStdImage(path, func(file *os.File) error { return png.Encode(file, img.NRGBA()) })
	case ".jpg", ".jpeg":
		return writeStdImage(path, func(file *os.File) error {
			return jpeg.Encode(file, img.NRGBA(), &jpeg.Options{Quality: 95})
		})
	case ".tga":
		if rle {
			data, err := rawimg.EncodeTGA(img, tga.EncodeRLE)
			if err != nil {
				return err
			}
			return os.WriteFile(path, data, 0o644)
		}
	}
	return rawimg.WriteFile(path, img)
}

func writeStdImage(path string, encode func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encode(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return file.Close()
}
