package store

import (
	"testing"
)

func testDirectoryRoundTrip(t *testing.T, dir Directory) {
	t.Helper()

	out, err := dir.CreateOutput("test.bin")
	if err != nil {
		t.Fatal(err)
	}
	if err := out.WriteByte(0x7F); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteUint32LE(0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteUint64LE(0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteBytes([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	if !dir.FileExists("test.bin") {
		t.Fatal("expected file to exist after CreateOutput")
	}

	in, err := dir.OpenInput("test.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	b, err := in.ReadByte()
	if err != nil || b != 0x7F {
		t.Fatalf("ReadByte = %v, %v", b, err)
	}
	u32, err := in.ReadUint32LE()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32LE = %x, %v", u32, err)
	}
	u64, err := in.ReadUint64LE()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64LE = %x, %v", u64, err)
	}
	buf := make([]byte, 5)
	if err := in.ReadBytes(buf); err != nil || string(buf) != "hello" {
		t.Fatalf("ReadBytes = %q, %v", buf, err)
	}

	fp, err := in.FilePointer()
	if err != nil {
		t.Fatal(err)
	}
	if err := in.Seek(1); err != nil {
		t.Fatal(err)
	}
	u32again, err := in.ReadUint32LE()
	if err != nil || u32again != 0xDEADBEEF {
		t.Fatalf("after seek: ReadUint32LE = %x, %v", u32again, err)
	}
	if fp != 18 {
		t.Errorf("final file pointer = %d, want 18", fp)
	}

	if err := dir.DeleteFile("test.bin"); err != nil {
		t.Fatal(err)
	}
	if dir.FileExists("test.bin") {
		t.Fatal("expected file to be gone after DeleteFile")
	}
}

func TestMemDirectoryRoundTrip(t *testing.T) {
	testDirectoryRoundTrip(t, NewMemDirectory())
}

func TestFSDirectoryRoundTrip(t *testing.T) {
	testDirectoryRoundTrip(t, NewFSDirectory(t.TempDir()))
}

func TestOpenInputMissingFile(t *testing.T) {
	dir := NewMemDirectory()
	if _, err := dir.OpenInput("missing.bin"); err == nil {
		t.Fatal("expected error opening missing file")
	}
}
