package store

import (
	"bytes"

	"github.com/pkg/errors"
)

// MemDirectory is an in-memory Directory, used by tests and by callers that
// want a fully in-memory producer without touching a filesystem (spec.md's
// non-goal on mmap-backed lazy loading permits this).
type MemDirectory struct {
	files map[string][]byte
}

// NewMemDirectory returns an empty in-memory Directory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{files: make(map[string][]byte)}
}

func (d *MemDirectory) OpenInput(name string) (Input, error) {
	data, ok := d.files[name]
	if !ok {
		return nil, errors.Errorf("store: no such file %q", name)
	}
	return &memInput{data: data}, nil
}

func (d *MemDirectory) CreateOutput(name string) (Output, error) {
	out := &memOutput{dir: d, name: name}
	d.files[name] = nil
	return out, nil
}

func (d *MemDirectory) DeleteFile(name string) error {
	if _, ok := d.files[name]; !ok {
		return errors.Errorf("store: no such file %q", name)
	}
	delete(d.files, name)
	return nil
}

func (d *MemDirectory) FileExists(name string) bool {
	_, ok := d.files[name]
	return ok
}

type memInput struct {
	data []byte
	pos  int64
}

func (in *memInput) ReadByte() (byte, error) {
	if in.pos >= int64(len(in.data)) {
		return 0, errors.Wrap(errShortRead, "store")
	}
	b := in.data[in.pos]
	in.pos++
	return b, nil
}

func (in *memInput) ReadBytes(buf []byte) error {
	if in.pos+int64(len(buf)) > int64(len(in.data)) {
		return errors.Wrap(errShortRead, "store")
	}
	copy(buf, in.data[in.pos:in.pos+int64(len(buf))])
	in.pos += int64(len(buf))
	return nil
}

func (in *memInput) ReadUint32LE() (uint32, error) {
	var buf [4]byte
	if err := in.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return readUint32LE(bytes.NewReader(buf[:]))
}

func (in *memInput) ReadUint64LE() (uint64, error) {
	var buf [8]byte
	if err := in.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return readUint64LE(bytes.NewReader(buf[:]))
}

func (in *memInput) Seek(fp int64) error {
	if fp < 0 || fp > int64(len(in.data)) {
		return errors.Wrapf(errShortRead, "store: seek past end (%d > %d)", fp, len(in.data))
	}
	in.pos = fp
	return nil
}

func (in *memInput) FilePointer() (int64, error) { return in.pos, nil }
func (in *memInput) Length() (int64, error)       { return int64(len(in.data)), nil }
func (in *memInput) Close() error                 { return nil }

type memOutput struct {
	dir  *MemDirectory
	name string
	buf  bytes.Buffer
}

func (out *memOutput) flush() {
	out.dir.files[out.name] = out.buf.Bytes()
}

func (out *memOutput) WriteByte(b byte) error {
	err := out.buf.WriteByte(b)
	out.flush()
	return err
}

func (out *memOutput) WriteBytes(buf []byte) error {
	_, err := out.buf.Write(buf)
	out.flush()
	return err
}

func (out *memOutput) WriteUint32LE(v uint32) error {
	if err := writeUint32LE(&out.buf, v); err != nil {
		return err
	}
	out.flush()
	return nil
}

func (out *memOutput) WriteUint64LE(v uint64) error {
	if err := writeUint64LE(&out.buf, v); err != nil {
		return err
	}
	out.flush()
	return nil
}

func (out *memOutput) FilePointer() (int64, error) { return int64(out.buf.Len()), nil }
func (out *memOutput) Close() error                 { out.flush(); return nil }
