/*
Package dds reads uncompressed DirectDraw Surface files and Arma/DayZ EDDS
(Enfusion DDS) containers, and writes both as 32-bit RGBA8 or BGRA8.

Only the top mip level is decoded. Pixel layouts are driven by the header
channel masks, so 16, 24 and 32-bit RGB, luminance and alpha-only surfaces
share one reader; DX10 headers are accepted for the 8-bit per channel DXGI
formats. Block compressed surfaces (DXT/BC) are reported as unsupported.

EDDS stores a DDS header followed by a block table and block bodies per mip
level (smallest to largest). Blocks are uncompressed (COPY) or LZ4 chunk
streams with a rolling 64KB dictionary.
*/
package dds
