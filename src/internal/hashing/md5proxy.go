package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"io/fs"
	"os"
)

type ChecksumProvider interface {
	GetChecksum() (string, error)
}

// ChecksumReaderProxy is a proxy that calculates the MD5 checksum of data as it's read.
type ChecksumReaderProxy struct {
	reader      io.Reader
	checksum    hash.Hash
	checksumErr error
}

// NewMD5ReaderProxy creates a new instance of ChecksumReaderProxy.
func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader:   reader,
		checksum: md5.New(),
	}
}

func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		if _, checksumErr := p.checksum.Write(buf[:n]); checksumErr != nil {
			p.checksumErr = checksumErr
			return n, checksumErr
		}
	}
	return n, err
}

// GetChecksum returns the calculated MD5 checksum as a hex string.
func (p *ChecksumReaderProxy) GetChecksum() (string, error) {
	if p.checksumErr != nil {
		return "", p.checksumErr
	}
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// ChecksumWriterProxy calculates the MD5 checksum of everything written through it.
// A nil writer makes it a pure hasher.
type ChecksumWriterProxy struct {
	writer      io.Writer
	checksum    hash.Hash
	checksumErr error
}

func NewMD5WriterProxy(writer io.Writer) *ChecksumWriterProxy {
	return &ChecksumWriterProxy{
		writer:   writer,
		checksum: md5.New(),
	}
}

func (p *ChecksumWriterProxy) Write(buf []byte) (int, error) {
	n := len(buf)
	if p.writer != nil {
		var err error
		if n, err = p.writer.Write(buf); err != nil {
			p.checksum.Write(buf[:n])
			return n, err
		}
	}
	if _, err := p.checksum.Write(buf[:n]); err != nil {
		p.checksumErr = err
		return n, err
	}
	return n, nil
}

func (p *ChecksumWriterProxy) GetChecksum() (string, error) {
	if p.checksumErr != nil {
		return "", p.checksumErr
	}
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// FileChecksum returns the MD5 of the file at path. A missing file yields an
// empty checksum and no error.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	proxy := NewMD5ReaderProxy(f)
	if _, err := io.Copy(io.Discard, proxy); err != nil {
		return "", err
	}
	return proxy.GetChecksum()
}

// IsChanged reports whether the content behind provider differs from the file at path.
func IsChanged(provider ChecksumProvider, path string) (bool, error) {
	want, err := provider.GetChecksum()
	if err != nil {
		return false, err
	}
	have, err := FileChecksum(path)
	if err != nil {
		return false, err
	}
	return have == "" || have != want, nil
}
