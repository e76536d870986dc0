package vbyte

import (
	"errors"
	"testing"

	"github.com/go-mizu/diagon/diagonerr"
)

func TestEncodeDecode4MixedWidths(t *testing.T) {
	values := [4]uint32{100, 1000, 100000, 10000000}
	out := make([]byte, 17)
	n := Encode(values, out)
	if n != 10 {
		t.Fatalf("Encode wrote %d bytes, want 10 (1 control + 1+2+3+3)", n)
	}

	var got [4]uint32
	consumed, err := Decode4(out[:n], &got)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n {
		t.Errorf("Decode4 consumed %d, want %d", consumed, n)
	}
	if got != values {
		t.Errorf("Decode4 = %v, want %v", got, values)
	}
}

func TestEncodeDecode4AllZero(t *testing.T) {
	values := [4]uint32{0, 0, 0, 0}
	out := make([]byte, 17)
	n := Encode(values, out)
	if n != 5 {
		t.Fatalf("all-zero group should take 5 bytes (control + 4x1), got %d", n)
	}
	var got [4]uint32
	if _, err := Decode4(out[:n], &got); err != nil {
		t.Fatal(err)
	}
	if got != values {
		t.Errorf("got %v, want %v", got, values)
	}
}

func TestEncodeDecode4AllMax(t *testing.T) {
	values := [4]uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}
	out := make([]byte, 17)
	n := Encode(values, out)
	if n != 17 {
		t.Fatalf("all-max group should take 17 bytes (control + 4x4), got %d", n)
	}
	var got [4]uint32
	if _, err := Decode4(out[:n], &got); err != nil {
		t.Fatal(err)
	}
	if got != values {
		t.Errorf("got %v, want %v", got, values)
	}
}

func TestDecodeBulkRequiresMultipleOf4(t *testing.T) {
	_, err := DecodeBulk(nil, 5, make([]uint32, 5))
	if !errors.Is(err, diagonerr.ErrCorruptEncoding) {
		t.Fatalf("expected ErrCorruptEncoding, got %v", err)
	}
}

func TestDecodeArbitraryN(t *testing.T) {
	values := []uint32{1, 2, 3, 4, 5, 6}
	out := make([]byte, 64)
	n := EncodePadded(values, out)

	got := make([]uint32, len(values))
	consumed, err := Decode(out[:n], len(values), got)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n {
		t.Errorf("Decode consumed %d, want %d", consumed, n)
	}
	for i, v := range values {
		if got[i] != v {
			t.Errorf("got[%d] = %d, want %d", i, got[i], v)
		}
	}
}

func TestDecode4TruncatedStream(t *testing.T) {
	// control byte claims 4-byte lengths but only 2 bytes of data follow.
	in := []byte{0xFF, 0x01, 0x02}
	var out [4]uint32
	_, err := Decode4(in, &out)
	if !errors.Is(err, diagonerr.ErrCorruptEncoding) {
		t.Fatalf("expected ErrCorruptEncoding, got %v", err)
	}
}

func TestDecode4MissingControlByte(t *testing.T) {
	var out [4]uint32
	_, err := Decode4(nil, &out)
	if !errors.Is(err, diagonerr.ErrCorruptEncoding) {
		t.Fatalf("expected ErrCorruptEncoding, got %v", err)
	}
}
