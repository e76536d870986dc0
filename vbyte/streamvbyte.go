package vbyte

import (
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/pkg/errors"
)

// byteLen returns the number of bytes needed to represent v, in [1, 4].
func byteLen(v uint32) int {
	switch {
	case v < 1<<8:
		return 1
	case v < 1<<16:
		return 2
	case v < 1<<24:
		return 3
	default:
		return 4
	}
}

// Encode writes the StreamVByte encoding of exactly 4 values to out,
// returning the number of bytes written (control byte plus 4..16 data
// bytes). out must have room for at least 17 bytes.
func Encode(values [4]uint32, out []byte) int {
	var control byte
	n := 1
	for i, v := range values {
		l := byteLen(v)
		control |= byte(l-1) << (uint(i) * 2)
		for b := 0; b < l; b++ {
			out[n] = byte(v >> (uint(b) * 8))
			n++
		}
	}
	out[0] = control
	return n
}

// lengthFromControl extracts the 4 byte-lengths packed into a StreamVByte
// control byte, each in [1, 4].
func lengthFromControl(control byte) [4]int {
	var lens [4]int
	for i := 0; i < 4; i++ {
		lens[i] = int((control>>(uint(i)*2))&0x3) + 1
	}
	return lens
}

// Decode4 decodes exactly 4 values from the front of in (a control byte
// followed by its data bytes), writing them into out and returning the
// number of bytes consumed.
func Decode4(in []byte, out *[4]uint32) (int, error) {
	if len(in) < 1 {
		return 0, errors.Wrap(diagonerr.ErrCorruptEncoding, "streamvbyte: missing control byte")
	}
	lens := lengthFromControl(in[0])
	pos := 1
	for i, l := range lens {
		if pos+l > len(in) {
			return 0, errors.Wrap(diagonerr.ErrCorruptEncoding, "streamvbyte: truncated group")
		}
		var v uint32
		for b := 0; b < l; b++ {
			v |= uint32(in[pos+b]) << (uint(b) * 8)
		}
		out[i] = v
		pos += l
	}
	return pos, nil
}

// DecodeBulk decodes n values (n % 4 == 0) from in into out, which must have
// capacity n. It returns the number of bytes consumed.
func DecodeBulk(in []byte, n int, out []uint32) (int, error) {
	if n%4 != 0 {
		return 0, errors.Wrapf(diagonerr.ErrCorruptEncoding, "streamvbyte: DecodeBulk requires n %% 4 == 0, got %d", n)
	}
	pos := 0
	var group [4]uint32
	for i := 0; i < n; i += 4 {
		consumed, err := Decode4(in[pos:], &group)
		if err != nil {
			return 0, err
		}
		copy(out[i:i+4], group[:])
		pos += consumed
	}
	return pos, nil
}

// Decode decodes an arbitrary number n of values from in into out (capacity
// n). The encoder always writes complete 4-groups, padding the final group
// with zeros; Decode consumes that padding internally and returns exactly n
// values.
func Decode(in []byte, n int, out []uint32) (int, error) {
	full := (n / 4) * 4
	pos := 0
	if full > 0 {
		consumed, err := DecodeBulk(in, full, out[:full])
		if err != nil {
			return 0, err
		}
		pos = consumed
	}
	rem := n - full
	if rem == 0 {
		return pos, nil
	}
	var group [4]uint32
	consumed, err := Decode4(in[pos:], &group)
	if err != nil {
		return 0, err
	}
	copy(out[full:n], group[:rem])
	return pos + consumed, nil
}

// EncodeBulk encodes n values (n % 4 == 0) from values into out, which must
// have room for the worst case (n/4 + 4*n) bytes. Returns bytes written.
func EncodeBulk(values []uint32, out []byte) int {
	pos := 0
	for i := 0; i < len(values); i += 4 {
		var group [4]uint32
		copy(group[:], values[i:i+4])
		pos += Encode(group, out[pos:])
	}
	return pos
}

// EncodePadded encodes an arbitrary number of values, padding the final
// group with zeros as the encoder contract requires, and returns the bytes
// written.
func EncodePadded(values []uint32, out []byte) int {
	full := (len(values) / 4) * 4
	pos := EncodeBulk(values[:full], out)
	rem := len(values) - full
	if rem == 0 {
		return pos
	}
	var group [4]uint32
	copy(group[:], values[full:])
	return pos + Encode(group, out[pos:])
}
