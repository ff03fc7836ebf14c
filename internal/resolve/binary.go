package resolve

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// BinarySniffBytes is the number of bytes read from the beginning of a file
// to detect binary content. This matches Git's approach of checking the
// first 8KB for null bytes.
const BinarySniffBytes = 8192

// IsBinary reports whether the file at path contains binary content. It
// reads the first BinarySniffBytes of the file and checks for a null byte.
// SniffReader applies the same check to any io.Reader.
//
// An empty file is NOT binary. Files that cannot be opened or read return an
// error.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s for binary detection: %w", path, err)
	}
	defer f.Close()
	return SniffReader(f)
}

// SniffReader reads up to BinarySniffBytes from r and reports whether a null
// byte was found within that prefix.
func SniffReader(r io.Reader) (bool, error) {
	buf := make([]byte, BinarySniffBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("reading for binary detection: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	return bytes.IndexByte(buf[:n], 0) != -1, nil
}

// SniffBytes reports whether content's first BinarySniffBytes contain a null
// byte. Used by Acquire on file content it has already read; stdin-text
// items are not sniffed.
func SniffBytes(content []byte) bool {
	n := len(content)
	if n > BinarySniffBytes {
		n = BinarySniffBytes
	}
	return bytes.IndexByte(content[:n], 0) != -1
}

// DefaultMaxFileSize is a reference size of 1MB in bytes. Nothing applies
// it automatically; an empty --max-file-size disables the size check.
const DefaultMaxFileSize int64 = 1_048_576

// IsLargeFile reports whether the file at path exceeds maxBytes. A maxBytes
// of 0 disables the check (always returns false).
func IsLargeFile(path string, maxBytes int64) (large bool, size int64, err error) {
	if maxBytes <= 0 {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return false, 0, fmt.Errorf("stat %s for size check: %w", path, statErr)
		}
		return false, info.Size(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, fmt.Errorf("stat %s for size check: %w", path, err)
	}
	return info.Size() > maxBytes, info.Size(), nil
}
