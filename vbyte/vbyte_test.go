package vbyte

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-mizu/diagon/diagonerr"
)

func TestU32RoundTrip(t *testing.T) {
	values := []uint32{
		0, 1, 127, 128, 129, 16383, 16384, 16385,
		2097151, 2097152, 268435455, 268435456,
		0xffffffff, 0x80000000,
	}
	for _, v := range values {
		enc := EncodeU32(nil, v)
		if got := EncodedSizeU32(v); got != len(enc) {
			t.Errorf("EncodedSizeU32(%d) = %d, want %d", v, got, len(enc))
		}
		got, n, err := DecodeU32(enc)
		if err != nil {
			t.Fatalf("DecodeU32(%v): %v", enc, err)
		}
		if n != len(enc) {
			t.Errorf("consumed %d, want %d", n, len(enc))
		}
		if got != v {
			t.Errorf("round-trip %d => %d", v, got)
		}
	}
}

func TestU64RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 16383, 16384,
		1 << 35, 1<<63 - 1, 1 << 63, 0xffffffffffffffff,
	}
	for _, v := range values {
		enc := EncodeU64(nil, v)
		if got := EncodedSizeU64(v); got != len(enc) {
			t.Errorf("EncodedSizeU64(%d) = %d, want %d", v, got, len(enc))
		}
		got, n, err := DecodeU64(enc)
		if err != nil {
			t.Fatalf("DecodeU64: %v", err)
		}
		if n != len(enc) || got != v {
			t.Errorf("round-trip %d => %d (consumed %d)", v, got, n)
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values32 := []int32{0, 1, -1, 2147483647, -2147483648, 63, -64}
	for _, v := range values32 {
		enc := EncodeS32(nil, v)
		got, _, err := DecodeS32(enc)
		if err != nil {
			t.Fatalf("DecodeS32: %v", err)
		}
		if got != v {
			t.Errorf("signed round-trip %d => %d", v, got)
		}
	}

	values64 := []int64{0, 1, -1, 1<<62 - 1, -(1 << 62)}
	for _, v := range values64 {
		enc := EncodeS64(nil, v)
		got, _, err := DecodeS64(enc)
		if err != nil {
			t.Fatalf("DecodeS64: %v", err)
		}
		if got != v {
			t.Errorf("signed round-trip %d => %d", v, got)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := DecodeU32([]byte{0x80})
	if !errors.Is(err, diagonerr.ErrCorruptEncoding) {
		t.Fatalf("expected ErrCorruptEncoding, got %v", err)
	}
}

func TestDecodeTooManyContinuationBytes(t *testing.T) {
	// Six continuation bytes, never terminating, exceeds MaxBytesU32.
	src := bytes.Repeat([]byte{0x80}, 6)
	_, _, err := DecodeU32(src)
	if !errors.Is(err, diagonerr.ErrCorruptEncoding) {
		t.Fatalf("expected ErrCorruptEncoding, got %v", err)
	}
}

func TestStreamReadWrite(t *testing.T) {
	var buf bytes.Buffer
	values := []uint32{0, 300, 16384, 0xffffffff}
	for _, v := range values {
		if err := WriteUvarint32(&buf, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range values {
		got, err := ReadUvarint32(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("stream round-trip %d => %d", want, got)
		}
	}
}

func TestAppendToExistingSlice(t *testing.T) {
	dst := []byte{0xAA, 0xBB}
	out := EncodeU32(dst, 300)
	if !bytes.Equal(out[:2], []byte{0xAA, 0xBB}) {
		t.Errorf("EncodeU32 must append, not overwrite")
	}
	v, n, err := DecodeU32(out[2:])
	if err != nil || v != 300 || n != len(out)-2 {
		t.Errorf("decode after append failed: v=%d n=%d err=%v", v, n, err)
	}
}
