// Package fileutil writes output files with integrity checks.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// WriteFile writes data to path with default permissions (0o644), replacing
// any existing file. It returns the hex SHA-256 of the bytes written.
func WriteFile(path string, data []byte) (string, error) {
	return WriteFileMode(path, data, 0o644, false)
}

// WriteFileMode writes data to path through a SHA-256 hasher and verifies the
// written size. When exclusive is set an existing path fails with an error
// wrapping fs.ErrExist and is left untouched. A short write removes path.
func WriteFileMode(path string, data []byte, mode os.FileMode, exclusive bool) (string, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	out, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return "", err
	}
	return writeVerified(out, path, data)
}

// writeVerified streams data into out, which was just created at path. Any
// failure removes path so no partial output survives.
func writeVerified(out io.WriteCloser, path string, data []byte) (string, error) {
	hasher := sha256.New()
	multi := io.MultiWriter(out, hasher)

	written, err := io.Copy(multi, bytes.NewReader(data))
	if err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if written != int64(len(data)) {
		_ = os.Remove(path)
		return "", fmt.Errorf("write size mismatch: expected %d bytes, wrote %d bytes", len(data), written)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyFile reports whether path holds exactly the content digest describes.
func VerifyFile(path, digest string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, in); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if got := hex.EncodeToString(hasher.Sum(nil)); got != digest {
		return fmt.Errorf("hash mismatch for %s: got %s, want %s", path, got, digest)
	}
	return nil
}
