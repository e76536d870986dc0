// Package store implements the random-access reader/writer abstraction the
// postings core treats as an opaque external collaborator (the core never
// assumes a filesystem, only the operations below).
package store

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Input is a random-access, sequentially-read handle over one named file.
// Implementations must support ReadByte/ReadBytes at the current position,
// explicit seeking, and reporting the current position.
type Input interface {
	io.Closer
	ReadByte() (byte, error)
	ReadBytes(buf []byte) error
	ReadUint32LE() (uint32, error)
	ReadUint64LE() (uint64, error)
	Seek(filePointer int64) error
	FilePointer() (int64, error)
	Length() (int64, error)
}

// Output is the symmetric writer used during indexing. Writes are
// append-only at the current file pointer.
type Output interface {
	io.Closer
	WriteByte(b byte) error
	WriteBytes(buf []byte) error
	WriteUint32LE(v uint32) error
	WriteUint64LE(v uint64) error
	FilePointer() (int64, error)
}

// Directory opens named files for reading or writing. A segment's files
// (postings, term dictionary, FST index) are all opened through the same
// Directory so the core is portable to any backing: filesystem, mmap, or an
// in-memory buffer.
type Directory interface {
	OpenInput(name string) (Input, error)
	CreateOutput(name string) (Output, error)
	DeleteFile(name string) error
	FileExists(name string) bool
}

var errShortRead = errors.New("store: short read")

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return errors.Wrap(errShortRead, "store")
		}
		return errors.Wrap(err, "store: read")
	}
	return nil
}

func readUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64LE(r io.Reader) (uint64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
