// Package numeric implements the sortable byte encodings used for numeric
// term values: a bit-flip transform so that big-endian lexicographic byte
// order matches IEEE-754 numeric order, including signed zero and infinities.
package numeric

import (
	"encoding/binary"
	"math"
)

// ToSortableI32 maps a raw int32 bit pattern to its sortable form: a
// non-negative b is returned unchanged; a negative b has every bit except the
// sign bit flipped.
func ToSortableI32(b int32) int32 {
	return b ^ ((b >> 31) & math.MaxInt32)
}

// FromSortableI32 is the inverse of ToSortableI32.
func FromSortableI32(s int32) int32 {
	return s ^ ((s >> 31) & math.MaxInt32)
}

// ToSortableI64 maps a raw int64 bit pattern to its sortable form.
func ToSortableI64(b int64) int64 {
	return b ^ ((b >> 63) & math.MaxInt64)
}

// FromSortableI64 is the inverse of ToSortableI64.
func FromSortableI64(s int64) int64 {
	return s ^ ((s >> 63) & math.MaxInt64)
}

// Float32ToSortableI32 converts a float32 to its sortable int32 form.
func Float32ToSortableI32(f float32) int32 {
	return ToSortableI32(int32(math.Float32bits(f)))
}

// SortableI32ToFloat32 is the inverse of Float32ToSortableI32.
func SortableI32ToFloat32(s int32) float32 {
	return math.Float32frombits(uint32(FromSortableI32(s)))
}

// Float64ToSortableI64 converts a float64 to its sortable int64 form.
func Float64ToSortableI64(f float64) int64 {
	return ToSortableI64(int64(math.Float64bits(f)))
}

// SortableI64ToFloat64 is the inverse of Float64ToSortableI64.
func SortableI64ToFloat64(s int64) float64 {
	return math.Float64frombits(uint64(FromSortableI64(s)))
}

// IntToBytesBE serializes a sortable int32 as 4 big-endian bytes, flipping
// the sign bit so unsigned lexicographic byte order matches signed numeric
// order (a plain two's-complement big-endian encoding would sort all
// negative values above all positive ones).
func IntToBytesBE(v int32, out []byte) {
	binary.BigEndian.PutUint32(out, uint32(v)^0x80000000)
}

// BytesToIntBE deserializes a sortable int32 from 4 big-endian bytes.
func BytesToIntBE(in []byte) int32 {
	return int32(binary.BigEndian.Uint32(in) ^ 0x80000000)
}

// LongToBytesBE serializes a sortable int64 as 8 big-endian bytes, flipping
// the sign bit for the same reason as IntToBytesBE.
func LongToBytesBE(v int64, out []byte) {
	binary.BigEndian.PutUint64(out, uint64(v)^0x8000000000000000)
}

// BytesToLongBE deserializes a sortable int64 from 8 big-endian bytes.
func BytesToLongBE(in []byte) int64 {
	return int64(binary.BigEndian.Uint64(in) ^ 0x8000000000000000)
}

// FloatToSortableBytes serializes a float32 as 4 sortable big-endian bytes.
func FloatToSortableBytes(f float32, out []byte) {
	IntToBytesBE(Float32ToSortableI32(f), out)
}

// SortableBytesToFloat deserializes a float32 from 4 sortable big-endian bytes.
func SortableBytesToFloat(in []byte) float32 {
	return SortableI32ToFloat32(BytesToIntBE(in))
}

// DoubleToSortableBytes serializes a float64 as 8 sortable big-endian bytes.
func DoubleToSortableBytes(f float64, out []byte) {
	LongToBytesBE(Float64ToSortableI64(f), out)
}

// SortableBytesToDouble deserializes a float64 from 8 sortable big-endian bytes.
func SortableBytesToDouble(in []byte) float64 {
	return SortableI64ToFloat64(BytesToLongBE(in))
}
