package hashing

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type errorReader struct {
	err error
}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, e.err
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, io.ErrShortWrite
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestChecksumReaderProxy_GetChecksum(t *testing.T) {
	testData := "10.0.0.0/8\n192.168.0.0/16\n"
	proxy := NewMD5ReaderProxy(strings.NewReader(testData))

	data, err := io.ReadAll(proxy)
	if err != nil {
		t.Fatalf("Failed to read data: %v", err)
	}
	if string(data) != testData {
		t.Errorf("Expected data %q, got %q", testData, string(data))
	}

	checksum, err := proxy.GetChecksum()
	if err != nil {
		t.Errorf("Unexpected error getting checksum: %v", err)
	}
	if checksum != md5Hex(testData) {
		t.Errorf("Expected checksum %s, got %s", md5Hex(testData), checksum)
	}
}

func TestChecksumReaderProxy_GetChecksumEmpty(t *testing.T) {
	proxy := NewMD5ReaderProxy(strings.NewReader(""))
	if _, err := io.ReadAll(proxy); err != nil {
		t.Fatalf("Failed to read data: %v", err)
	}

	checksum, _ := proxy.GetChecksum()
	if checksum != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Expected MD5 of empty input, got %s", checksum)
	}
}

func TestChecksumReaderProxy_ReadError(t *testing.T) {
	expectedErr := errors.New("read failed")
	proxy := NewMD5ReaderProxy(&errorReader{err: expectedErr})

	buf := make([]byte, 10)
	n, err := proxy.Read(buf)
	if n != 0 {
		t.Errorf("Expected 0 bytes read, got %d", n)
	}
	if err != expectedErr {
		t.Errorf("Expected error %v, got %v", expectedErr, err)
	}
}

func TestChecksumWriterProxy(t *testing.T) {
	var buf bytes.Buffer
	proxy := NewMD5WriterProxy(&buf)

	proxy.Write([]byte("1.2.3.0/24\n"))
	proxy.Write([]byte("2001:db8::/32\n"))

	want := "1.2.3.0/24\n2001:db8::/32\n"
	if buf.String() != want {
		t.Errorf("Expected underlying writer to receive %q, got %q", want, buf.String())
	}
	checksum, err := proxy.GetChecksum()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if checksum != md5Hex(want) {
		t.Errorf("Expected checksum %s, got %s", md5Hex(want), checksum)
	}
}

func TestChecksumWriterProxy_NilWriter(t *testing.T) {
	proxy := NewMD5WriterProxy(nil)
	n, err := proxy.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Errorf("Expected (3, nil), got (%d, %v)", n, err)
	}
	if checksum, _ := proxy.GetChecksum(); checksum != md5Hex("abc") {
		t.Errorf("Unexpected checksum %s", checksum)
	}
}

func TestChecksumWriterProxy_ShortWrite(t *testing.T) {
	proxy := NewMD5WriterProxy(shortWriter{})
	n, err := proxy.Write([]byte("abcd"))
	if n != 2 || err != io.ErrShortWrite {
		t.Errorf("Expected (2, ErrShortWrite), got (%d, %v)", n, err)
	}
	if checksum, _ := proxy.GetChecksum(); checksum != md5Hex("ab") {
		t.Errorf("Expected checksum of written prefix, got %s", checksum)
	}
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()

	checksum, err := FileChecksum(filepath.Join(dir, "missing.txt"))
	if err != nil || checksum != "" {
		t.Errorf("Expected empty checksum for missing file, got %q, %v", checksum, err)
	}

	path := filepath.Join(dir, "drop.txt")
	if err := os.WriteFile(path, []byte("10.0.0.0/8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	checksum, err = FileChecksum(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if checksum != md5Hex("10.0.0.0/8\n") {
		t.Errorf("Unexpected checksum %s", checksum)
	}
}

func TestIsChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drop.txt")

	same := NewMD5WriterProxy(nil)
	same.Write([]byte("10.0.0.0/8\n"))

	changed, err := IsChanged(same, path)
	if err != nil || !changed {
		t.Errorf("Expected missing file to count as changed, got %v, %v", changed, err)
	}

	if err := os.WriteFile(path, []byte("10.0.0.0/8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err = IsChanged(same, path)
	if err != nil || changed {
		t.Errorf("Expected identical content to be unchanged, got %v, %v", changed, err)
	}

	other := NewMD5WriterProxy(nil)
	other.Write([]byte("172.16.0.0/12\n"))
	changed, err = IsChanged(other, path)
	if err != nil || !changed {
		t.Errorf("Expected different content to be changed, got %v, %v", changed, err)
	}
}
