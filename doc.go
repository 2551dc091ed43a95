/*
Package rawimg decodes DDS, EDDS, PSD and TGA images into a packed 32-bit
pixel buffer and encodes that buffer back to TGA, DDS or EDDS.

The format packages (dds, psd, tga) can be used on their own. This package
selects one by Type, which TypeFromPath derives from a file extension, and
threads the caller's pixel.Format through to the decoder:

	img, err := rawimg.ReadFile("texture.edds", pixel.ABGR)
	if err != nil {
		return err
	}
	err = rawimg.WriteFile("texture.tga", img)

A Type of TypeUnknown, or a false second result from TypeFromPath, means the
input is not handled here and the caller may fall back to the image package.
*/
package rawimg
