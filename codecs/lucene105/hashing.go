package lucene105

import (
	"github.com/cespare/xxhash/v2"
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
)

// checksumOutput wraps a store.Output, feeding every byte written through an
// xxhash64 digest so finish can append a footer checksum covering the whole
// file body.
type checksumOutput struct {
	out store.Output
	h   *xxhash.Digest
}

func newChecksumOutput(out store.Output) *checksumOutput {
	return &checksumOutput{out: out, h: xxhash.New()}
}

func (c *checksumOutput) WriteByte(b byte) error {
	if err := c.out.WriteByte(b); err != nil {
		return err
	}
	c.h.Write([]byte{b})
	return nil
}

func (c *checksumOutput) WriteBytes(buf []byte) error {
	if err := c.out.WriteBytes(buf); err != nil {
		return err
	}
	c.h.Write(buf)
	return nil
}

func (c *checksumOutput) WriteUint32LE(v uint32) error {
	if err := c.out.WriteUint32LE(v); err != nil {
		return err
	}
	var buf [4]byte
	buf[0], buf[1], buf[2], buf[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	c.h.Write(buf[:])
	return nil
}

func (c *checksumOutput) WriteUint64LE(v uint64) error {
	if err := c.out.WriteUint64LE(v); err != nil {
		return err
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	c.h.Write(buf[:])
	return nil
}

func (c *checksumOutput) FilePointer() (int64, error) { return c.out.FilePointer() }
func (c *checksumOutput) Close() error                 { return c.out.Close() }

// finish writes the accumulated checksum as an 8-byte footer (not itself
// hashed) and returns it.
func (c *checksumOutput) finish() (uint64, error) {
	sum := c.h.Sum64()
	if err := c.out.WriteUint64LE(sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// checksumInput wraps a store.Input, hashing every byte read so verify can
// compare against a trailing footer written by checksumOutput.finish.
type checksumInput struct {
	in store.Input
	h  *xxhash.Digest
}

func newChecksumInput(in store.Input) *checksumInput {
	return &checksumInput{in: in, h: xxhash.New()}
}

func (c *checksumInput) ReadByte() (byte, error) {
	b, err := c.in.ReadByte()
	if err != nil {
		return 0, err
	}
	c.h.Write([]byte{b})
	return b, nil
}

func (c *checksumInput) ReadBytes(buf []byte) error {
	if err := c.in.ReadBytes(buf); err != nil {
		return err
	}
	c.h.Write(buf)
	return nil
}

func (c *checksumInput) ReadUint32LE() (uint32, error) {
	v, err := c.in.ReadUint32LE()
	if err != nil {
		return 0, err
	}
	var buf [4]byte
	buf[0], buf[1], buf[2], buf[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	c.h.Write(buf[:])
	return v, nil
}

func (c *checksumInput) ReadUint64LE() (uint64, error) {
	v, err := c.in.ReadUint64LE()
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	c.h.Write(buf[:])
	return v, nil
}

func (c *checksumInput) Seek(fp int64) error        { return c.in.Seek(fp) }
func (c *checksumInput) FilePointer() (int64, error) { return c.in.FilePointer() }
func (c *checksumInput) Length() (int64, error)       { return c.in.Length() }
func (c *checksumInput) Close() error                 { return c.in.Close() }

// verify reads the trailing 8-byte footer directly (bypassing the digest)
// and compares it to the accumulated checksum of everything read so far.
func (c *checksumInput) verify() error {
	want, err := c.in.ReadUint64LE()
	if err != nil {
		return err
	}
	if got := c.h.Sum64(); got != want {
		return errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: checksum mismatch: got %x, want %x", got, want)
	}
	return nil
}
