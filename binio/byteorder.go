package binio

import (
	"encoding/binary"
	"math"
)

// ByteOrder maps raw 2, 4 and 8 byte groups to numeric values and back.
// Floats are reinterpreted bit patterns of the integer conversions.
type ByteOrder struct {
	order binary.ByteOrder
}

var (
	// BigEndian reads and writes most significant byte first.
	BigEndian = ByteOrder{order: binary.BigEndian}
	// LittleEndian reads and writes least significant byte first.
	LittleEndian = ByteOrder{order: binary.LittleEndian}
)

// String returns the name of the byte order.
func (o ByteOrder) String() string {
	if o.order == nil {
		return "ByteOrder(nil)"
	}
	return o.order.String()
}

func (o ByteOrder) Uint16(b []byte) uint16 { return o.order.Uint16(b) }
func (o ByteOrder) Int16(b []byte) int16   { return int16(o.order.Uint16(b)) }
func (o ByteOrder) Uint32(b []byte) uint32 { return o.order.Uint32(b) }
func (o ByteOrder) Int32(b []byte) int32   { return int32(o.order.Uint32(b)) }
func (o ByteOrder) Uint64(b []byte) uint64 { return o.order.Uint64(b) }
func (o ByteOrder) Int64(b []byte) int64   { return int64(o.order.Uint64(b)) }

func (o ByteOrder) Float32(b []byte) float32 {
	return math.Float32frombits(o.order.Uint32(b))
}

func (o ByteOrder) Float64(b []byte) float64 {
	return math.Float64frombits(o.order.Uint64(b))
}

func (o ByteOrder) PutUint16(b []byte, v uint16) { o.order.PutUint16(b, v) }
func (o ByteOrder) PutUint32(b []byte, v uint32) { o.order.PutUint32(b, v) }
func (o ByteOrder) PutUint64(b []byte, v uint64) { o.order.PutUint64(b, v) }

func (o ByteOrder) PutFloat32(b []byte, v float32) {
	o.order.PutUint32(b, math.Float32bits(v))
}

func (o ByteOrder) PutFloat64(b []byte, v float64) {
	o.order.PutUint64(b, math.Float64bits(v))
}
