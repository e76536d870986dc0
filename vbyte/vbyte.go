// Package vbyte implements the variable-byte integer codec used for term
// metadata varints: 7-bit groups, most-significant group last, continuation
// bit set on every byte except the last. Signed values are zig-zag mapped
// before encoding.
package vbyte

import (
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/pkg/errors"
)

const (
	// MaxBytesU32 is the maximum number of bytes EncodeU32 can produce.
	MaxBytesU32 = 5
	// MaxBytesU64 is the maximum number of bytes EncodeU64 can produce.
	MaxBytesU64 = 10
)

// EncodeU32 appends the VByte encoding of v to dst and returns the result.
func EncodeU32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// EncodeU64 appends the VByte encoding of v to dst and returns the result.
func EncodeU64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// EncodeS32 zig-zag maps a signed value before encoding.
func EncodeS32(dst []byte, v int32) []byte {
	return EncodeU32(dst, zigzagEncode32(v))
}

// EncodeS64 zig-zag maps a signed value before encoding.
func EncodeS64(dst []byte, v int64) []byte {
	return EncodeU64(dst, zigzagEncode64(v))
}

func zigzagEncode32(n int32) uint32 { return uint32((n << 1) ^ (n >> 31)) }
func zigzagEncode64(n int64) uint64 { return uint64((n << 1) ^ (n >> 63)) }
func zigzagDecode32(z uint32) int32 { return int32(z>>1) ^ -int32(z&1) }
func zigzagDecode64(z uint64) int64 { return int64(z>>1) ^ -int64(z&1) }

// EncodedSizeU32 returns len(EncodeU32(nil, v)) without allocating.
func EncodedSizeU32(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// EncodedSizeU64 returns len(EncodeU64(nil, v)) without allocating.
func EncodedSizeU64(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// DecodeU32 decodes a uint32 from the front of src, returning the value and
// the number of bytes consumed. It fails with ErrCorruptEncoding if no
// terminating byte appears within the first MaxBytesU32 bytes, or if src is
// exhausted mid-sequence.
func DecodeU32(src []byte) (v uint32, consumed int, err error) {
	var shift uint
	for i := 0; i < MaxBytesU32; i++ {
		if i >= len(src) {
			return 0, 0, errors.Wrap(diagonerr.ErrCorruptEncoding, "vbyte: truncated u32 stream")
		}
		b := src[i]
		if b&0x80 == 0 {
			v |= uint32(b) << shift
			return v, i + 1, nil
		}
		v |= uint32(b&0x7f) << shift
		shift += 7
	}
	return 0, 0, errors.Wrapf(diagonerr.ErrCorruptEncoding, "vbyte: u32 sequence exceeds %d bytes", MaxBytesU32)
}

// DecodeU64 decodes a uint64 from the front of src.
func DecodeU64(src []byte) (v uint64, consumed int, err error) {
	var shift uint
	for i := 0; i < MaxBytesU64; i++ {
		if i >= len(src) {
			return 0, 0, errors.Wrap(diagonerr.ErrCorruptEncoding, "vbyte: truncated u64 stream")
		}
		b := src[i]
		if b&0x80 == 0 {
			v |= uint64(b) << shift
			return v, i + 1, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, 0, errors.Wrapf(diagonerr.ErrCorruptEncoding, "vbyte: u64 sequence exceeds %d bytes", MaxBytesU64)
}

// DecodeS32 decodes a zig-zag encoded signed value.
func DecodeS32(src []byte) (v int32, consumed int, err error) {
	z, n, err := DecodeU32(src)
	if err != nil {
		return 0, 0, err
	}
	return zigzagDecode32(z), n, nil
}

// DecodeS64 decodes a zig-zag encoded signed value.
func DecodeS64(src []byte) (v int64, consumed int, err error) {
	z, n, err := DecodeU64(src)
	if err != nil {
		return 0, 0, err
	}
	return zigzagDecode64(z), n, nil
}

// ByteReader is the minimal stream interface needed to decode a varint
// without buffering the whole input (mirrors io.ByteReader).
type ByteReader interface {
	ReadByte() (byte, error)
}

// ReadUvarint32 decodes a uint32 one byte at a time from r.
func ReadUvarint32(r ByteReader) (uint32, error) {
	var v uint32
	var shift uint
	for i := 0; i < MaxBytesU32; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "vbyte: reading u32 stream")
		}
		if b&0x80 == 0 {
			v |= uint32(b) << shift
			return v, nil
		}
		v |= uint32(b&0x7f) << shift
		shift += 7
	}
	return 0, errors.Wrapf(diagonerr.ErrCorruptEncoding, "vbyte: u32 sequence exceeds %d bytes", MaxBytesU32)
}

// ReadUvarint64 decodes a uint64 one byte at a time from r.
func ReadUvarint64(r ByteReader) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < MaxBytesU64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "vbyte: reading u64 stream")
		}
		if b&0x80 == 0 {
			v |= uint64(b) << shift
			return v, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, errors.Wrapf(diagonerr.ErrCorruptEncoding, "vbyte: u64 sequence exceeds %d bytes", MaxBytesU64)
}

// ByteWriter is the minimal stream interface needed to encode a varint
// (mirrors io.ByteWriter).
type ByteWriter interface {
	WriteByte(c byte) error
}

// WriteUvarint32 writes the VByte encoding of v one byte at a time to w.
func WriteUvarint32(w ByteWriter, v uint32) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

// WriteUvarint64 writes the VByte encoding of v one byte at a time to w.
func WriteUvarint64(w ByteWriter, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}
