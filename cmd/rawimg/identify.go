package main

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/woozymasta/rawimg"
	"github.com/woozymasta/rawimg/dds"
	"github.com/woozymasta/rawimg/pixel"
	"github.com/woozymasta/rawimg/tga"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Print image type, dimensions and format details",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	t, ok := rawimg.TypeFromPath(path)
	if !ok {
		cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		fmt.Fprintf(out, "File:       %s\n", path)
		fmt.Fprintf(out, "Type:       %s\n", name)
		fmt.Fprintf(out, "Dimensions: %d x %d\n", cfg.Width, cfg.Height)
		return nil
	}

	fmt.Fprintf(out, "File:       %s\n", path)
	fmt.Fprintf(out, "Type:       %s\n", t)

	switch t {
	case rawimg.TypeDDS, rawimg.TypeEDDS:
		return identifyDDS(out, data)
	case rawimg.TypePSD:
		return identifyPSD(out, data)
	case rawimg.TypeTGA:
		return identifyTGA(out, data)
	}
	return nil
}

func identifyDDS(out io.Writer, data []byte) error {
	info, err := dds.ReadInfo(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dimensions: %d x %d\n", info.Width, info.Height)
	fmt.Fprintf(out, "Format:     %s\n", info.Format)
	fmt.Fprintf(out, "Mipmaps:    %d\n", info.MipMapCount)
	fmt.Fprintf(out, "Blocks:     %t\n", info.EDDS)
	return nil
}

func identifyTGA(out io.Writer, data []byte) error {
	h, err := tga.ReadHeader(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dimensions: %d x %d\n", h.Width, h.Height)
	fmt.Fprintf(out, "Image type: %s\n", h.ImageType)
	fmt.Fprintf(out, "Depth:      %d bits\n", h.PixelDepth)
	if h.ColorMapType != 0 {
		fmt.Fprintf(out, "Colormap:   %d entries at %d bits\n", h.ColorMapLength, h.ColorMapDepth)
	}
	return nil
}

func identifyPSD(out io.Writer, data []byte) error {
	doc, err := rawimg.DecodePSD(data, pixel.ABGR, &rawimg.Options{PSDLayers: true})
	if err != nil {
		return err
	}
	h := doc.Header
	fmt.Fprintf(out, "Dimensions: %d x %d\n", h.Width, h.Height)
	fmt.Fprintf(out, "Color mode: %s\n", h.ColorMode)
	fmt.Fprintf(out, "Channels:   %d\n", h.Channels)
	fmt.Fprintf(out, "Depth:      %d bits\n", h.Depth)

	layers := doc.Layers()
	fmt.Fprintf(out, "Layers:     %d\n", len(layers))
	for i, l := range layers {
		hidden := ""
		if l.Invisible() {
			hidden = " hidden"
		}
		fmt.Fprintf(out, "  %2d: %q %dx%d at (%d,%d) blend=%s opacity=%d%s\n",
			i, l.Name, l.Width(), l.Height(), l.Left, l.Top, l.BlendMode, l.Opacity, hidden)
	}
	return nil
}
