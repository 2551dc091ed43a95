package psd

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/woozymasta/rawimg/binio"
	"github.com/woozymasta/rawimg/pixel"
)

// ChannelID tags a layer channel.
type ChannelID int16

const (
	ChannelRed       ChannelID = 0
	ChannelGreen     ChannelID = 1
	ChannelBlue      ChannelID = 2
	ChannelAlpha     ChannelID = -1
	ChannelUserMask  ChannelID = -2
	ChannelUserMask2 ChannelID = -3
)

func (id ChannelID) String() string {
	switch id {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	case ChannelAlpha:
		return "alpha"
	case ChannelUserMask:
		return "user-mask"
	case ChannelUserMask2:
		return "user-mask2"
	default:
		return fmt.Sprintf("channel(%d)", int16(id))
	}
}

// Layer flag bits.
const (
	FlagTransparencyProtected uint8 = 1 << 0
	FlagInvisible             uint8 = 1 << 1
)

// Rect is a layer or mask rectangle in canvas coordinates.
type Rect struct {
	Top, Left, Bottom, Right int32
}

func (r Rect) Width() int  { return int(r.Right) - int(r.Left) }
func (r Rect) Height() int { return int(r.Bottom) - int(r.Top) }

// Channel is one decoded plane of a layer.
type Channel struct {
	ID ChannelID
	// Length is the byte length declared in the layer record, including
	// the 2 byte compression tag.
	Length      uint32
	Compression Compression
	// Data holds Width*Height bytes of the layer (or mask) rectangle.
	// It is nil for the real user mask, which is skipped.
	Data []byte
}

// Layer is one layer record with its channel planes.
type Layer struct {
	Rect
	Name      string
	BlendMode string
	Opacity   uint8
	Clipping  uint8
	Flags     uint8
	// Mask is the user mask rectangle when the record carries one.
	Mask     Rect
	Channels []*Channel
}

func (l *Layer) TransparencyProtected() bool { return l.Flags&FlagTransparencyProtected != 0 }
func (l *Layer) Invisible() bool             { return l.Flags&FlagInvisible != 0 }

// Channel returns the channel tagged id or nil.
func (l *Layer) Channel(id ChannelID) *Channel {
	for _, ch := range l.Channels {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// HasChannel reports whether the layer carries a channel tagged id.
func (l *Layer) HasChannel(id ChannelID) bool {
	return l.Channel(id) != nil
}

// Pixels recombines the layer planes into pixels packed with f. Missing
// color planes read as 0 and a missing alpha plane as 255.
func (l *Layer) Pixels(f *pixel.Format) []uint32 {
	n := l.Width() * l.Height()
	if n <= 0 {
		return nil
	}

	plane := func(id ChannelID) []byte {
		ch := l.Channel(id)
		if ch == nil || len(ch.Data) < n {
			return nil
		}
		return ch.Data
	}
	r, g, b, a := plane(ChannelRed), plane(ChannelGreen), plane(ChannelBlue), plane(ChannelAlpha)

	sample := func(p []byte, i int, def uint32) uint32 {
		if p == nil {
			return def
		}
		return uint32(p[i])
	}

	pix := make([]uint32, n)
	for i := range pix {
		pix[i] = f.Pixel(sample(r, i, 0), sample(g, i, 0), sample(b, i, 0), sample(a, i, 0xFF))
	}
	return pix
}

// Image returns the layer as an image sized to its own rectangle.
func (l *Layer) Image(f *pixel.Format) (*pixel.Image, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil format", pixel.ErrInvalidFormat)
	}
	return pixel.New(l.Pixels(f), max(l.Width(), 0), max(l.Height(), 0), f)
}

// minLayerRecord is the smallest possible layer record: rectangle, channel
// count, blend signature and key, four flag bytes and the extra length.
const minLayerRecord = 16 + 2 + 4 + 4 + 4 + 4

// readLayerRecord reads one layer record, leaving the reader at the end of
// its extra data.
func readLayerRecord(r *binio.Reader) (*Layer, error) {
	l := &Layer{}
	var err error
	if l.Top, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle", err)
	}
	if l.Left, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle", err)
	}
	if l.Bottom, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle", err)
	}
	if l.Right, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle", err)
	}
	if w, h := l.Width(), l.Height(); w < 0 || h < 0 || w > maxDimension || h > maxDimension {
		return nil, fmt.Errorf("%w: %d,%d %d,%d", ErrLayerBounds, l.Left, l.Top, l.Right, l.Bottom)
	}

	count, err := r.ReadUint16()
	if err != nil {
		return nil, truncated("layer channel count", err)
	}
	if count > maxChannels {
		return nil, fmt.Errorf("%w: layer has %d channels", ErrChannelCount, count)
	}
	l.Channels = make([]*Channel, count)
	for i := range l.Channels {
		id, err := r.ReadInt16()
		if err != nil {
			return nil, truncated("layer channel info", err)
		}
		length, err := r.ReadUint32()
		if err != nil {
			return nil, truncated("layer channel info", err)
		}
		l.Channels[i] = &Channel{ID: ChannelID(id), Length: length}
	}

	sig, err := r.ReadString(4)
	if err != nil {
		return nil, truncated("layer blend signature", err)
	}
	if sig != signature8BIM {
		return nil, fmt.Errorf("%w: %q", ErrBlendSignature, sig)
	}
	if l.BlendMode, err = r.ReadString(4); err != nil {
		return nil, truncated("layer blend mode", err)
	}

	var fields [4]byte
	if err := r.ReadFull(fields[:]); err != nil {
		return nil, truncated("layer flags", err)
	}
	// fields[3] is filler
	l.Opacity, l.Clipping, l.Flags = fields[0], fields[1], fields[2]

	extra, err := r.ReadUint32()
	if err != nil {
		return nil, truncated("layer extra data length", err)
	}
	end := r.Position() + int64(extra)

	if err := readLayerMask(r, l); err != nil {
		return nil, err
	}

	// blending ranges
	n, err := r.ReadUint32()
	if err != nil {
		return nil, truncated("layer blending ranges", err)
	}
	if err := r.Skip(int64(n)); err != nil {
		return nil, truncated("layer blending ranges", err)
	}

	if l.Name, err = readPascalName(r); err != nil {
		return nil, err
	}

	if err := readAdditionalInfo(r, l, end); err != nil {
		return nil, err
	}

	pos := r.Position()
	if pos > end {
		return nil, fmt.Errorf("%w: layer extra data overruns by %d bytes", ErrSectionLength, pos-end)
	}
	if err := r.Skip(end - pos); err != nil {
		return nil, truncated("layer extra data", err)
	}
	return l, nil
}

func readLayerMask(r *binio.Reader, l *Layer) error {
	n, err := r.ReadUint32()
	if err != nil {
		return truncated("layer mask", err)
	}
	if n >= 16 {
		var raw [16]byte
		if err := r.ReadFull(raw[:]); err != nil {
			return truncated("layer mask", err)
		}
		be := binio.BigEndian
		l.Mask = Rect{
			Top:    be.Int32(raw[0:4]),
			Left:   be.Int32(raw[4:8]),
			Bottom: be.Int32(raw[8:12]),
			Right:  be.Int32(raw[12:16]),
		}
		n -= 16
	}
	if err := r.Skip(int64(n)); err != nil {
		return truncated("layer mask", err)
	}
	return nil
}

// readPascalName reads a Mac Roman Pascal string padded to a multiple of 4
// bytes including the length byte.
func readPascalName(r *binio.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", truncated("layer name", err)
	}
	raw, err := r.ReadBytes(int(n))
	if err != nil {
		return "", truncated("layer name", err)
	}
	size := 1 + int(n)
	if pad := (4 - size%4) % 4; pad > 0 {
		if err := r.Skip(int64(pad)); err != nil {
			return "", truncated("layer name", err)
		}
	}
	name, err := charmap.Macintosh.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(name), nil
}

// readAdditionalInfo reads tagged blocks while the next four bytes are an
// 8BIM or 8B64 signature. On any other value the four bytes are un-read.
func readAdditionalInfo(r *binio.Reader, l *Layer, end int64) error {
	for end-r.Position() >= 12 {
		r.Mark()
		sig, err := r.ReadString(4)
		if err != nil {
			return truncated("additional layer info", err)
		}
		if sig != signature8BIM && sig != signature8B64 {
			if err := r.Reset(); err != nil {
				return err
			}
			r.Unmark()
			return nil
		}
		r.Unmark()

		key, err := r.ReadString(4)
		if err != nil {
			return truncated("additional layer info", err)
		}
		n, err := r.ReadUint32()
		if err != nil {
			return truncated("additional layer info", err)
		}
		if int64(n) > end-r.Position() {
			return fmt.Errorf("%w: %s block of %d bytes", ErrSectionLength, key, n)
		}

		if key != "luni" {
			if err := r.Skip(int64(n)); err != nil {
				return truncated("additional layer info", err)
			}
			continue
		}

		data, err := r.ReadBytes(int(n))
		if err != nil {
			return truncated("unicode layer name", err)
		}
		if name, ok := unicodeName(data); ok {
			l.Name = name
		}
	}
	return nil
}

// unicodeName decodes a luni block: a uint32 character count followed by
// UTF-16BE code units.
func unicodeName(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	count := int64(binio.BigEndian.Uint32(data[:4]))
	if count*2 > int64(len(data)-4) {
		return "", false
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	name, err := dec.Bytes(data[4 : 4+count*2])
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(name), "\x00"), true
}
