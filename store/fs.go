package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FSDirectory is a Directory backed by a single filesystem directory.
type FSDirectory struct {
	root string
}

// NewFSDirectory returns a Directory rooted at dir. The directory must
// already exist.
func NewFSDirectory(dir string) *FSDirectory {
	return &FSDirectory{root: dir}
}

func (d *FSDirectory) path(name string) string {
	return filepath.Join(d.root, name)
}

func (d *FSDirectory) OpenInput(name string) (Input, error) {
	f, err := os.Open(d.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "store: open %s", name)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "store: stat %s", name)
	}
	return &fsInput{f: f, length: info.Size()}, nil
}

func (d *FSDirectory) CreateOutput(name string) (Output, error) {
	f, err := os.Create(d.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "store: create %s", name)
	}
	return &fsOutput{f: f}, nil
}

func (d *FSDirectory) DeleteFile(name string) error {
	if err := os.Remove(d.path(name)); err != nil {
		return errors.Wrapf(err, "store: delete %s", name)
	}
	return nil
}

func (d *FSDirectory) FileExists(name string) bool {
	_, err := os.Stat(d.path(name))
	return err == nil
}

type fsInput struct {
	f      *os.File
	pos    int64
	length int64
}

func (in *fsInput) ReadByte() (byte, error) {
	var buf [1]byte
	if err := readFull(in.f, buf[:]); err != nil {
		return 0, err
	}
	in.pos++
	return buf[0], nil
}

func (in *fsInput) ReadBytes(buf []byte) error {
	if err := readFull(in.f, buf); err != nil {
		return err
	}
	in.pos += int64(len(buf))
	return nil
}

func (in *fsInput) ReadUint32LE() (uint32, error) {
	v, err := readUint32LE(in.f)
	if err != nil {
		return 0, err
	}
	in.pos += 4
	return v, nil
}

func (in *fsInput) ReadUint64LE() (uint64, error) {
	v, err := readUint64LE(in.f)
	if err != nil {
		return 0, err
	}
	in.pos += 8
	return v, nil
}

func (in *fsInput) Seek(fp int64) error {
	off, err := in.f.Seek(fp, io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "store: seek")
	}
	in.pos = off
	return nil
}

func (in *fsInput) FilePointer() (int64, error) { return in.pos, nil }
func (in *fsInput) Length() (int64, error)       { return in.length, nil }
func (in *fsInput) Close() error                 { return in.f.Close() }

type fsOutput struct {
	f   *os.File
	pos int64
}

func (out *fsOutput) WriteByte(b byte) error {
	if _, err := out.f.Write([]byte{b}); err != nil {
		return errors.Wrap(err, "store: write")
	}
	out.pos++
	return nil
}

func (out *fsOutput) WriteBytes(buf []byte) error {
	if _, err := out.f.Write(buf); err != nil {
		return errors.Wrap(err, "store: write")
	}
	out.pos += int64(len(buf))
	return nil
}

func (out *fsOutput) WriteUint32LE(v uint32) error {
	if err := writeUint32LE(out.f, v); err != nil {
		return errors.Wrap(err, "store: write")
	}
	out.pos += 4
	return nil
}

func (out *fsOutput) WriteUint64LE(v uint64) error {
	if err := writeUint64LE(out.f, v); err != nil {
		return errors.Wrap(err, "store: write")
	}
	out.pos += 8
	return nil
}

func (out *fsOutput) FilePointer() (int64, error) { return out.pos, nil }
func (out *fsOutput) Close() error                 { return out.f.Close() }
