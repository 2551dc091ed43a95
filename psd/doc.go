/*
Package psd decodes 8-bit grayscale, indexed and RGB Photoshop documents.

The composite image is always decoded. Layers are read when Options.Layers is
set; each layer keeps its channel planes and can be recombined with
Layer.Image. Decoding runs in a single forward pass, so DecodeReader accepts
any io.Reader.

Importing the package registers the "psd" format with the image package.
*/
package psd
